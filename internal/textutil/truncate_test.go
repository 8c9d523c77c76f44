package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateWithinLimitUnchanged(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 55))
}

func TestTruncateEllipsizes(t *testing.T) {
	long := strings.Repeat("a", 60)
	got := Truncate(long, 55)
	assert.Len(t, got, 55)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncateIdempotent(t *testing.T) {
	long := strings.Repeat("b", 600)
	once := Truncate(long, 500)
	twice := Truncate(once, 500)
	assert.Equal(t, once, twice)
}

func TestTruncateSmallLimit(t *testing.T) {
	got := Truncate("hello", 2)
	assert.Equal(t, "he", got)
}

func TestQueryEscapeUsesLiteralPercent20ForSpaces(t *testing.T) {
	got := QueryEscape(`text ~ "login timeout" ORDER BY updated DESC`)
	assert.Equal(t, "text%20~%20%22login%20timeout%22%20ORDER%20BY%20updated%20DESC", got)
	assert.NotContains(t, got, "+")
}
