package querylang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStructuredDetectsOperatorsAndKeywords(t *testing.T) {
	cases := map[string]bool{
		"project = FOO AND status = Done": true,
		"login timeout":                   false,
		"space = DEV":                     true,
		"STATUS = Open":                   true,
		"summary ~ foo":                   true,
		"a OR b":                          true,
		"updated ORDER BY updated DESC":   true,
		"":                                false,
		"   ":                             false,
	}
	for input, want := range cases {
		assert.Equalf(t, want, IsStructured(input), "input=%q", input)
	}
}

func TestJQLOrDefaultPassesStructuredQueryVerbatim(t *testing.T) {
	got := JQLOrDefault("project = FOO AND status = Done")
	assert.Equal(t, "project = FOO AND status = Done", got)
}

func TestJQLOrDefaultWrapsFreeText(t *testing.T) {
	got := JQLOrDefault("login timeout")
	assert.Equal(t, `text ~ "login timeout" ORDER BY updated DESC`, got)
}

func TestCQLOrDefaultWrapsFreeText(t *testing.T) {
	got := CQLOrDefault("login timeout")
	assert.Equal(t, `text ~ "login timeout" ORDER BY lastModified DESC`, got)
}

func TestJQLOrDefaultEscapesQuotesInFreeText(t *testing.T) {
	got := JQLOrDefault(`say "hi"`)
	assert.Equal(t, `text ~ "say \"hi\"" ORDER BY updated DESC`, got)
}
