package textnorm

import "strings"

// Tokenize normalizes text and splits it into lowercase tokens. Technical
// symbols (+ . # / -) survive so "c++", "node.js" and "ci/cd" stay whole.
func Tokenize(text string) []string {
	n := Normalize(text)
	if n == "" {
		return nil
	}
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '+', r == '.', r == '#', r == '/', r == '-':
			return r
		case r == ' ', r == '\n', r == '\t', r == '\r', r == '\f', r == '\v':
			return r
		}
		return ' '
	}, n)
	return strings.Fields(mapped)
}

// TrimToken drops trailing sentence punctuation from a token ("python." -> "python").
func TrimToken(tok string) string {
	return strings.TrimRight(tok, "./-")
}

// TokenSet is the membership view of a token stream.
type TokenSet map[string]struct{}

// NewTokenSet tokenizes text and records every token plus its trimmed form.
func NewTokenSet(text string) TokenSet {
	return SetOf(Tokenize(text))
}

// SetOf builds a TokenSet from already tokenized input.
func SetOf(tokens []string) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
		if trimmed := TrimToken(tok); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}

// Has reports membership.
func (s TokenSet) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}
