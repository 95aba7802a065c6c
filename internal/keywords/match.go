package keywords

import (
	"regexp"
	"strings"

	"resume-ats/internal/textnorm"
)

var cppFamily = map[string]bool{
	"c++":       true,
	"cplusplus": true,
	"cxx":       true,
	"c ++":      true,
}

// fuzzyExclusions lists longer terms removed from the stripped resume before
// the fuzzy check, so "java" is not found inside "javascript".
var fuzzyExclusions = map[string][]string{
	"java": {"javascript"},
}

var (
	cppPatterns = []*regexp.Regexp{
		bounded(`c\s*\+\s*\+`),
		bounded(`c\s*plus\s*plus`),
		bounded(`cxx`),
	}
	javaScriptTail = regexp.MustCompile(`^\s*script`)
	jsPattern      = bounded(`js|javascript`)
)

// bounded wraps pattern so it only matches between non-alphanumeric edges.
// This behaves like \b for word-character keywords and still works for
// keywords ending in a symbol, such as "c#".
func bounded(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9_])(?:` + pattern + `)(?:$|[^a-z0-9_])`)
}

// Matcher checks keywords against one resume. It precomputes the normalized,
// tokenized and stripped forms of the resume.
type Matcher struct {
	text     string
	stripped string
	tokens   textnorm.TokenSet
}

// NewMatcher prepares resumeText for repeated IsPresent calls.
func NewMatcher(resumeText string) *Matcher {
	text := textnorm.Normalize(resumeText)
	return &Matcher{
		text:     text,
		stripped: stripNonAlnum(text),
		tokens:   textnorm.NewTokenSet(text),
	}
}

// IsPresent reports whether keyword appears in resumeText. tokens is the
// resume's token set; nil builds one from resumeText.
func IsPresent(resumeText, keyword string, tokens textnorm.TokenSet) bool {
	text := textnorm.Normalize(resumeText)
	if tokens == nil {
		tokens = textnorm.NewTokenSet(text)
	}
	m := &Matcher{text: text, stripped: stripNonAlnum(text), tokens: tokens}
	return m.IsPresent(keyword)
}

// IsPresent runs the tiers in order: exact token, token variants, regex over
// the normalized resume, then stripped-alphanumeric substring.
func (m *Matcher) IsPresent(keyword string) bool {
	kw := textnorm.Normalize(keyword)
	if kw == "" {
		return false
	}

	if m.tokens.Has(kw) {
		return true
	}

	variants := Variants(kw)
	for _, v := range variants {
		if m.tokens.Has(v) {
			return true
		}
	}

	if m.matchesPattern(kw) {
		return true
	}

	return m.fuzzy(kw, variants)
}

func (m *Matcher) matchesPattern(kw string) bool {
	switch {
	case cppFamily[kw]:
		for _, re := range cppPatterns {
			if re.MatchString(m.text) {
				return true
			}
		}
		return false
	case kw == "java":
		return m.hasStandaloneJava()
	case kw == "js":
		return jsPattern.MatchString(m.text)
	}
	return literalPattern(kw).MatchString(m.text)
}

// hasStandaloneJava accepts a bounded "java" unless "script" follows it,
// optionally after whitespace.
func (m *Matcher) hasStandaloneJava() bool {
	text := m.text
	for idx := 0; ; {
		i := strings.Index(text[idx:], "java")
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len("java")
		if isBoundary(text, start-1) && isBoundary(text, end) && !javaScriptTail.MatchString(text[end:]) {
			return true
		}
		idx = end
	}
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !isAlnum(c) && c != '_'
}

func literalPattern(kw string) *regexp.Regexp {
	parts := strings.Fields(kw)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return bounded(strings.Join(parts, `\s+`))
}

func (m *Matcher) fuzzy(kw string, variants []string) bool {
	haystack := m.stripped
	for _, ex := range fuzzyExclusions[kw] {
		haystack = strings.ReplaceAll(haystack, ex, " ")
	}
	candidates := append([]string{kw}, variants...)
	for _, c := range candidates {
		needle := stripNonAlnum(c)
		// A single character would match almost any resume.
		if len(needle) < 2 {
			continue
		}
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// Variants returns the alternate token spellings tried for kw, excluding kw itself.
func Variants(kw string) []string {
	var out []string
	add := func(v string) {
		if v == "" || v == kw {
			return
		}
		for _, existing := range out {
			if existing == v {
				return
			}
		}
		out = append(out, v)
	}

	add(strings.ReplaceAll(kw, " ", ""))
	add(strings.NewReplacer("-", "", "_", "").Replace(kw))
	if strings.HasSuffix(kw, "js") {
		add(strings.TrimSuffix(kw, "js") + "javascript")
	}
	if strings.HasSuffix(kw, "developer") {
		add(strings.TrimSuffix(kw, "developer") + "dev")
	}
	return out
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isAlnum(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
