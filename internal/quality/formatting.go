// Package quality scores the structural health of extracted text and decides
// when extraction should fall back to OCR.
package quality

import (
	"strings"
	"unicode/utf8"

	"resume-ats/internal/textnorm"
)

const (
	MinResumeTokens      = 120
	MaxAverageLineLength = 200

	replacementPenalty = 20
	sparsePenalty      = 25
	longLinePenalty    = 10
	minFormattingScore = 20
	maxFormattingScore = 100
)

// AssessFormatting scores text from 20 to 100 independent of its content.
func AssessFormatting(text string) int {
	score := maxFormattingScore
	if strings.ContainsRune(text, utf8.RuneError) {
		score -= replacementPenalty
	}
	if len(textnorm.Tokenize(text)) < MinResumeTokens {
		score -= sparsePenalty
	}
	if AverageLineLength(textnorm.Normalize(text)) > MaxAverageLineLength {
		score -= longLinePenalty
	}
	return clamp(score, minFormattingScore, maxFormattingScore)
}

// AverageLineLength is the mean rune count of the newline-separated lines of text.
func AverageLineLength(text string) float64 {
	lines := strings.Split(text, "\n")
	total := 0
	for _, ln := range lines {
		total += utf8.RuneCountInString(ln)
	}
	return float64(total) / float64(len(lines))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
