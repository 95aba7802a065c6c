// Package textnorm canonicalizes extracted resume text and splits it into tokens.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var charMap = strings.NewReplacer(
	"\ufb00", "ff",
	"\ufb01", "fi",
	"\ufb02", "fl",
	"\ufb03", "ffi",
	"\ufb04", "ffl",
	"\ufb05", "st",
	"\ufb06", "st",
	"\u00ad", "",
	"\u2018", "'", "\u2019", "'", "\u201a", "'", "\u201b", "'",
	"\u201c", `"`, "\u201d", `"`, "\u201e", `"`, "\u201f", `"`,
	"\u2013", "-", "\u2014", "-", "\u2212", "-",
	"\u25e6", "\u2022", "\u2043", "\u2022", "\u25aa", "\u2022", "\u25cf", "\u2022",
	"\t", " ", "\r", " ", "\u00a0", " ",
)

var (
	multiSpace  = regexp.MustCompile(` {2,}`)
	lineEdges   = regexp.MustCompile(` *\n *`)
	manyNewline = regexp.MustCompile(`\n{3,}`)
	wrapHyphen  = regexp.MustCompile(`-\n([a-z])`)
	// line-end dashes left after the case-sensitive join, once lowercased
	lineEndDash = regexp.MustCompile(`(?: *-)+\n([a-z])`)
)

func isCombiningMark(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

// Normalize returns the matching form of text: canonicalized and lowercased.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(text string) string {
	return normalize(text, true)
}

// Clean is Normalize without lowercasing. It is used for text that is shown
// back to users or sent to the feedback model.
func Clean(text string) string {
	return normalize(text, false)
}

func normalize(text string, lower bool) string {
	if text == "" {
		return ""
	}

	s := foldUnicode(text)
	s = charMap.Replace(s)
	s = multiSpace.ReplaceAllString(s, " ")
	s = lineEdges.ReplaceAllString(s, "\n")
	s = manyNewline.ReplaceAllString(s, "\n\n")
	s = joinWrappedWords(s)
	if lower {
		s = splitLineEndDashes(strings.ToLower(s))
	}
	return strings.TrimSpace(s)
}

// splitLineEndDashes drops a hyphen that ends a line before a word that was
// capitalized ("Team-\nLead" -> "team\nlead"). Lowercased, it would look like
// a wrapped word to the next Normalize call.
func splitLineEndDashes(s string) string {
	if !strings.Contains(s, "-\n") {
		return s
	}
	s = lineEndDash.ReplaceAllString(s, "\n$1")
	return manyNewline.ReplaceAllString(s, "\n\n")
}

// foldUnicode applies NFKD and drops U+0300..U+036F.
func foldUnicode(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(isCombiningMark)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// joinWrappedWords removes "-\n" before a lowercase letter until none remain,
// so "a-\n-\nb" collapses fully in a single call.
func joinWrappedWords(s string) string {
	for strings.Contains(s, "-\n") {
		next := wrapHyphen.ReplaceAllString(s, "$1")
		if next == s {
			return s
		}
		s = next
	}
	return s
}

// StripNonPrintable keeps printable ASCII and newlines and drops everything else.
func StripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if IsPrintable(r) {
			return r
		}
		return -1
	}, s)
}

// IsPrintable reports whether r is in the printable ASCII range or a newline.
func IsPrintable(r rune) bool {
	return r == '\n' || (r >= 0x20 && r <= 0x7E)
}

// HasLetter reports whether s contains any letter.
func HasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
