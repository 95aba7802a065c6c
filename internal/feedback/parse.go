package feedback

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformed means the model reply could not be turned into an AIResult.
var ErrMalformed = errors.New("ai response malformed")

var codeFence = regexp.MustCompile("```[A-Za-z]*")

// Parse excavates the JSON object from a model reply and decodes it. Code
// fences and trailing commas are removed and the outermost {...} span is
// tried before the first balanced object.
func Parse(raw string) (AIResult, error) {
	text := strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))
	if text == "" {
		return AIResult{}, fmt.Errorf("%w: empty response", ErrMalformed)
	}

	candidates := objectCandidates(text)
	if len(candidates) == 0 {
		return AIResult{}, fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}

	var lastErr error
	for _, c := range candidates {
		res, err := decode(c)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return AIResult{}, fmt.Errorf("%w: %v", ErrMalformed, lastErr)
}

func decode(candidate string) (AIResult, error) {
	cleaned := stripTrailingCommas(candidate)
	var res AIResult
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return AIResult{}, err
	}
	if err := validate.Struct(res); err != nil {
		return AIResult{}, fmt.Errorf("missing required fields: %w", err)
	}
	return res, nil
}

func objectCandidates(text string) []string {
	var out []string
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		out = append(out, text[start:end+1])
	}
	if balanced := firstBalancedObject(text); balanced != "" && (len(out) == 0 || balanced != out[0]) {
		out = append(out, balanced)
	}
	return out
}

// stringTracker follows whether a byte scan is inside a JSON string.
type stringTracker struct {
	inString bool
	escaped  bool
}

// next consumes c and reports whether c is part of a string literal,
// quotes included.
func (t *stringTracker) next(c byte) bool {
	if t.inString {
		switch {
		case t.escaped:
			t.escaped = false
		case c == '\\':
			t.escaped = true
		case c == '"':
			t.inString = false
		}
		return true
	}
	if c == '"' {
		t.inString = true
		return true
	}
	return false
}

// firstBalancedObject returns the first brace-balanced object, ignoring
// braces inside JSON strings.
func firstBalancedObject(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	var tr stringTracker
	for i := start; i < len(text); i++ {
		c := text[i]
		if tr.next(c) {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// stripTrailingCommas drops commas that directly precede a closing brace or
// bracket. Commas inside strings are kept.
func stripTrailingCommas(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	var tr stringTracker
	for i := 0; i < len(text); i++ {
		c := text[i]
		if tr.next(c) || c != ',' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(text) && isJSONSpace(text[j]) {
			j++
		}
		if j < len(text) && (text[j] == '}' || text[j] == ']') {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
