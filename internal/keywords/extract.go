// Package keywords derives keyword sets from job descriptions and checks
// their presence in resumes.
package keywords

import (
	"sort"
	"unicode/utf8"

	"resume-ats/internal/textnorm"
)

const (
	MaxKeywords      = 80
	MaxOtherKeywords = 60
	MinKeywordLength = 3
)

// Extract returns the deduplicated keyword set of a job description:
// curated technical terms first in list order, then up to MaxOtherKeywords
// other tokens in first-seen order, capped at MaxKeywords.
func Extract(jobDescription string) []string {
	seen := make(map[string]struct{})
	var technical, other []string

	for _, raw := range textnorm.Tokenize(jobDescription) {
		tok := textnorm.TrimToken(raw)
		if tok == "" {
			continue
		}
		if _, ok := stopWords[tok]; ok {
			continue
		}
		_, isTech := technicalIndex[tok]
		if !isTech && utf8.RuneCountInString(tok) < MinKeywordLength {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if isTech {
			technical = append(technical, tok)
		} else {
			other = append(other, tok)
		}
	}

	sort.SliceStable(technical, func(i, j int) bool {
		return technicalIndex[technical[i]] < technicalIndex[technical[j]]
	})
	if len(other) > MaxOtherKeywords {
		other = other[:MaxOtherKeywords]
	}

	out := append(technical, other...)
	if len(out) > MaxKeywords {
		out = out[:MaxKeywords]
	}
	return out
}

// IsTechnical reports whether kw is on the curated technical list.
func IsTechnical(kw string) bool {
	_, ok := technicalIndex[kw]
	return ok
}
