package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeKeepsTechnicalSymbols(t *testing.T) {
	got := Tokenize("Built C++ and C# services with Node.js, CI/CD & real-time APIs!")
	assert.Equal(t, []string{"built", "c++", "and", "c#", "services", "with", "node.js", "ci/cd", "real-time", "apis"}, got)
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("!!! ??? ***"))
}

func TestTokenizeIsASequence(t *testing.T) {
	assert.Equal(t, []string{"go", "go", "go"}, Tokenize("Go go GO"))
}

func TestTokenSetRecordsTrimmedForms(t *testing.T) {
	set := NewTokenSet("Experienced Python developer.")
	assert.True(t, set.Has("developer."))
	assert.True(t, set.Has("developer"))
	assert.True(t, set.Has("python"))
	assert.False(t, set.Has("java"))
}
