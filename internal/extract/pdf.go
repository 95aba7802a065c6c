package extract

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"resume-ats/internal/layout"
)

const (
	wordSpaceMultiplier = 0.3
	baselineTolerance   = 0.5
)

// readPDFPages returns one fragment list per page. The pdf reader panics on
// some malformed streams; those surface as ErrCorruptedFile.
func readPDFPages(ctx context.Context, data []byte) (pages [][]layout.Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: pdf: %v", ErrCorruptedFile, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", ErrCorruptedFile, err)
	}

	total := reader.NumPage()
	pages = make([][]layout.Fragment, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pages = append(pages, fragmentsFromGlyphs(page.Content().Text))
	}
	return pages, nil
}

// fragmentsFromGlyphs merges consecutive glyphs into word fragments. A new
// fragment starts on whitespace, a baseline change, a backwards jump, or a
// horizontal gap wider than a fraction of the font size.
func fragmentsFromGlyphs(glyphs []pdf.Text) []layout.Fragment {
	var (
		out  []layout.Fragment
		cur  strings.Builder
		open bool
		x, y float64
		endX float64
		size float64
	)

	flush := func() {
		if open {
			if text := strings.TrimSpace(cur.String()); text != "" {
				out = append(out, layout.Fragment{Text: text, X: x, Y: y})
			}
		}
		cur.Reset()
		open = false
	}

	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		if open {
			gap := g.X - endX
			limit := math.Max(size, 1) * wordSpaceMultiplier
			if math.Abs(g.Y-y) > baselineTolerance || gap > limit || gap < -math.Max(size, 1) {
				flush()
			}
		}
		if !open {
			x, y, size = g.X, g.Y, g.FontSize
			open = true
		}
		cur.WriteString(g.S)
		endX = g.X + g.W
	}
	flush()
	return out
}
