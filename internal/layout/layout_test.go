package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconstructPageEmpty(t *testing.T) {
	assert.Equal(t, "", ReconstructPage(nil))
	assert.Equal(t, "", ReconstructPage([]Fragment{{Text: "  ", X: 10, Y: 10}}))
}

func TestReconstructPageSingleColumnTopDown(t *testing.T) {
	frags := []Fragment{
		{Text: "Experience", X: 50, Y: 600},
		{Text: "Summary", X: 50, Y: 700},
		{Text: "Skills", X: 50, Y: 500},
		{Text: "Jane Doe", X: 50, Y: 750},
	}
	assert.Equal(t, "Jane Doe\nSummary\nExperience\nSkills", ReconstructPage(frags))
}

func TestReconstructPageMergesFragmentsLeftToRight(t *testing.T) {
	frags := []Fragment{
		{Text: "Engineer ", X: 120, Y: 700.4},
		{Text: " Senior", X: 60, Y: 699.6},
		{Text: "Go", X: 200, Y: 701.9},
	}
	assert.Equal(t, "Senior Engineer Go", ReconstructPage(frags))
}

func TestGroupLinesTolerance(t *testing.T) {
	cases := []struct {
		name  string
		dy    float64
		lines int
	}{
		{name: "same baseline", dy: 0, lines: 1},
		{name: "within tolerance", dy: 2, lines: 1},
		{name: "outside tolerance", dy: 3, lines: 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DefaultOptions().GroupLines([]Fragment{
				{Text: "a", X: 0, Y: 100},
				{Text: "b", X: 10, Y: 100 + tc.dy},
			})
			assert.Len(t, got, tc.lines)
		})
	}
}

func TestGroupLinesReusesFirstMatchingBucket(t *testing.T) {
	got := DefaultOptions().GroupLines([]Fragment{
		{Text: "a", X: 0, Y: 100},
		{Text: "b", X: 0, Y: 103},
		{Text: "c", X: 10, Y: 101.6},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "a c", got[0].Text)
	assert.Equal(t, "b", got[1].Text)
}

func TestGroupLinesComputesMidX(t *testing.T) {
	got := DefaultOptions().GroupLines([]Fragment{
		{Text: "left", X: 40, Y: 10},
		{Text: "right", X: 160, Y: 10},
	})
	require.Len(t, got, 1)
	assert.Equal(t, 40.0, got[0].MinX)
	assert.Equal(t, 160.0, got[0].MaxX)
	assert.Equal(t, 100.0, got[0].MidX)
}

func twoColumnFragments(rightX float64) []Fragment {
	return []Fragment{
		{Text: "L1", X: 50, Y: 700},
		{Text: "R1", X: rightX, Y: 710},
		{Text: "L2", X: 50, Y: 680},
		{Text: "R2", X: rightX, Y: 690},
		{Text: "L3", X: 50, Y: 660},
		{Text: "R3", X: rightX, Y: 670},
	}
}

func TestReconstructPageTwoColumn(t *testing.T) {
	got := ReconstructPage(twoColumnFragments(400))
	assert.Equal(t, "L1\nL2\nL3\n\nR1\nR2\nR3", got)

	blocks := strings.Split(got, "\n\n")
	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[0], "L"))
	assert.True(t, strings.HasPrefix(blocks[1], "R"))
}

func TestReconstructPageTwoColumnUnevenCounts(t *testing.T) {
	frags := append(twoColumnFragments(420), Fragment{Text: "L4", X: 50, Y: 640})
	assert.Equal(t, "L1\nL2\nL3\nL4\n\nR1\nR2\nR3", ReconstructPage(frags))
}

func TestColumnThresholdBoundary(t *testing.T) {
	// Single-fragment lines: midX == x, so the spread is rightX - 50.
	atThreshold := ReconstructPage(twoColumnFragments(250))
	assert.Equal(t, "R1\nL1\nR2\nL2\nR3\nL3", atThreshold)

	overThreshold := ReconstructPage(twoColumnFragments(251))
	assert.Equal(t, "L1\nL2\nL3\n\nR1\nR2\nR3", overThreshold)
}

func TestOptionsTunableThreshold(t *testing.T) {
	opts := Options{LineTolerance: DefaultLineTolerance, ColumnSpread: 100}
	assert.Equal(t, "L1\nL2\nL3\n\nR1\nR2\nR3", opts.ReconstructPage(twoColumnFragments(200)))
	assert.False(t, DefaultOptions().IsTwoColumn(DefaultOptions().GroupLines(twoColumnFragments(200))))
}

func TestMalformedCoordinatesTreatedAsOrigin(t *testing.T) {
	frags := []Fragment{
		{Text: "top", X: 0, Y: 500},
		{Text: "broken", X: math.NaN(), Y: math.Inf(1)},
		{Text: "floor", X: 5, Y: 1},
	}
	assert.Equal(t, "top\nbroken floor", ReconstructPage(frags))
}

func TestReconstructDocumentSeparatesPages(t *testing.T) {
	pages := [][]Fragment{
		{{Text: "page one", X: 0, Y: 10}},
		nil,
		{{Text: "page two", X: 0, Y: 10}},
	}
	assert.Equal(t, "page one\n\npage two", ReconstructDocument(pages))
}
