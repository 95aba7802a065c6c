// Package layout rebuilds reading-order text from positioned page fragments.
//
// PDF coordinates grow upward, so "top to bottom" means descending y. Pages
// whose line midpoints spread wider than Options.ColumnSpread between the
// 10th and 90th percentile are read as two columns.
package layout

import (
	"math"
	"sort"
	"strings"
)

// Fragment is one run of characters at a page coordinate.
type Fragment struct {
	Text string
	X    float64
	Y    float64
}

// Line is a set of fragments sharing a baseline bucket.
type Line struct {
	Y    float64
	Text string
	MinX float64
	MaxX float64
	MidX float64
}

const (
	DefaultLineTolerance = 2.0
	DefaultColumnSpread  = 200.0
)

// Options tunes the reconstruction heuristics.
type Options struct {
	// LineTolerance is the max distance between rounded y values that share a line.
	LineTolerance float64
	// ColumnSpread is the p90-p10 midX spread above which a page is two-column.
	ColumnSpread float64
}

// DefaultOptions returns the stock heuristics.
func DefaultOptions() Options {
	return Options{LineTolerance: DefaultLineTolerance, ColumnSpread: DefaultColumnSpread}
}

func (o Options) withDefaults() Options {
	if o.LineTolerance < 0 || math.IsNaN(o.LineTolerance) {
		o.LineTolerance = DefaultLineTolerance
	}
	if o.ColumnSpread <= 0 || math.IsNaN(o.ColumnSpread) {
		o.ColumnSpread = DefaultColumnSpread
	}
	return o
}

// ReconstructPage returns reading-order text for one page using DefaultOptions.
func ReconstructPage(fragments []Fragment) string {
	return DefaultOptions().ReconstructPage(fragments)
}

// ReconstructDocument reconstructs each page and separates pages with a blank line.
func ReconstructDocument(pages [][]Fragment) string {
	return DefaultOptions().ReconstructDocument(pages)
}

// ReconstructDocument is the Options-aware variant of ReconstructDocument.
func (o Options) ReconstructDocument(pages [][]Fragment) string {
	var parts []string
	for _, page := range pages {
		if text := o.ReconstructPage(page); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ReconstructPage groups fragments into lines, detects columns and emits text.
func (o Options) ReconstructPage(fragments []Fragment) string {
	o = o.withDefaults()
	lines := o.GroupLines(fragments)
	if len(lines) == 0 {
		return ""
	}

	if !o.IsTwoColumn(lines) {
		sortTopDown(lines)
		return joinLines(lines)
	}

	median := lowerMedianMidX(lines)
	var left, right []Line
	for _, ln := range lines {
		if ln.MidX <= median {
			left = append(left, ln)
		} else {
			right = append(right, ln)
		}
	}
	sortTopDown(left)
	sortTopDown(right)

	var blocks []string
	for _, col := range [][]Line{left, right} {
		if text := joinLines(col); text != "" {
			blocks = append(blocks, text)
		}
	}
	return strings.Join(blocks, "\n\n")
}

type bucket struct {
	key   float64
	frags []Fragment
}

// GroupLines buckets fragments by rounded y. A fragment joins the first
// existing bucket whose key is within LineTolerance, otherwise it opens one.
// Lines are returned in bucket creation order; empty lines are dropped.
func (o Options) GroupLines(fragments []Fragment) []Line {
	o = o.withDefaults()
	var buckets []*bucket
	for _, f := range fragments {
		f.X = finite(f.X)
		f.Y = finite(f.Y)
		y := math.Round(f.Y)

		var target *bucket
		for _, b := range buckets {
			if math.Abs(b.key-y) <= o.LineTolerance {
				target = b
				break
			}
		}
		if target == nil {
			target = &bucket{key: y}
			buckets = append(buckets, target)
		}
		target.frags = append(target.frags, f)
	}

	lines := make([]Line, 0, len(buckets))
	for _, b := range buckets {
		if ln, ok := b.line(); ok {
			lines = append(lines, ln)
		}
	}
	return lines
}

func (b *bucket) line() (Line, bool) {
	frags := append([]Fragment(nil), b.frags...)
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		if t := strings.TrimSpace(f.Text); t != "" {
			parts = append(parts, t)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return Line{}, false
	}

	minX, maxX := frags[0].X, frags[len(frags)-1].X
	return Line{
		Y:    b.key,
		Text: text,
		MinX: minX,
		MaxX: maxX,
		MidX: (minX + maxX) / 2,
	}, true
}

// IsTwoColumn reports whether the p10..p90 spread of line midpoints exceeds ColumnSpread.
func (o Options) IsTwoColumn(lines []Line) bool {
	o = o.withDefaults()
	if len(lines) < 2 {
		return false
	}
	mids := sortedMids(lines)
	p10 := mids[percentileIndex(len(mids), 0.1)]
	p90 := mids[percentileIndex(len(mids), 0.9)]
	return p90-p10 > o.ColumnSpread
}

func percentileIndex(n int, p float64) int {
	return int(math.Floor(p * float64(n-1)))
}

func sortedMids(lines []Line) []float64 {
	mids := make([]float64, len(lines))
	for i, ln := range lines {
		mids[i] = ln.MidX
	}
	sort.Float64s(mids)
	return mids
}

// lowerMedianMidX picks mids[(n-1)/2] so an even split of two tight clusters
// still puts the upper cluster on the right.
func lowerMedianMidX(lines []Line) float64 {
	mids := sortedMids(lines)
	return mids[(len(mids)-1)/2]
}

func sortTopDown(lines []Line) {
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Y > lines[j].Y })
}

func joinLines(lines []Line) string {
	texts := make([]string, len(lines))
	for i, ln := range lines {
		texts[i] = ln.Text
	}
	return strings.Join(texts, "\n")
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
