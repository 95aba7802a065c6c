package quality

import (
	"errors"
	"strings"
	"unicode/utf8"

	"resume-ats/internal/textnorm"
)

const (
	MinPrintableRatio = 0.7
	MinValidWords     = 10
	MinContentChars   = 100
)

// ErrInsufficientContent means no usable resume text could be recovered.
var ErrInsufficientContent = errors.New("no readable text could be extracted from the document")

// Stats are the extraction statistics the gate decides on.
type Stats struct {
	PrintableRatio float64 `json:"printableRatio"`
	ValidWords     int     `json:"validWords"`
	Chars          int     `json:"chars"`
}

// Report is the outcome of Evaluate.
type Report struct {
	Text     string `json:"-"`
	Stats    Stats  `json:"stats"`
	Strict   bool   `json:"strict"`
	NeedsOCR bool   `json:"needsOcr"`
}

// Measure computes Stats for text as given.
func Measure(text string) Stats {
	total := utf8.RuneCountInString(text)
	printable := 0
	for _, r := range text {
		if textnorm.IsPrintable(r) {
			printable++
		}
	}
	denom := total
	if denom < 1 {
		denom = 1
	}
	return Stats{
		PrintableRatio: float64(printable) / float64(denom),
		ValidWords:     CountValidWords(text),
		Chars:          total,
	}
}

// NeedsOCR reports whether stats indicate text too garbled or sparse to use.
func NeedsOCR(s Stats) bool {
	return s.PrintableRatio < MinPrintableRatio || s.ValidWords < MinValidWords
}

// Evaluate measures cleaned text. When the printable ratio is too low it
// retries on the printable-only re-normalization of the text and reports
// whichever version it settled on.
func Evaluate(text string) Report {
	rep := Report{Text: text, Stats: Measure(text)}
	if rep.Stats.PrintableRatio < MinPrintableRatio {
		strict := textnorm.Clean(textnorm.StripNonPrintable(text))
		rep = Report{Text: strict, Stats: Measure(strict), Strict: true}
	}
	rep.NeedsOCR = NeedsOCR(rep.Stats)
	return rep
}

// CheckSufficient returns ErrInsufficientContent for text with fewer than
// MinValidWords valid words or MinContentChars characters.
func CheckSufficient(text string) error {
	if CountValidWords(text) < MinValidWords || utf8.RuneCountInString(text) < MinContentChars {
		return ErrInsufficientContent
	}
	return nil
}

// CountValidWords counts whitespace-separated words longer than two runes
// that contain a letter and are not just digits and punctuation.
func CountValidWords(text string) int {
	n := 0
	for _, w := range strings.Fields(text) {
		if isValidWord(w) {
			n++
		}
	}
	return n
}

func isValidWord(w string) bool {
	return utf8.RuneCountInString(w) > 2 && textnorm.HasLetter(w)
}
