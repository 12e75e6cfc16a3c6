package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKeyword(t *testing.T) {
	for _, kw := range Keywords {
		assert.True(t, IsKeyword(kw), kw)
	}
	for _, ident := range []string{"iff", "x", "Assert", ""} {
		assert.False(t, IsKeyword(ident), ident)
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "IDENTIFIER", IDENTIFIER.String())
	assert.Equal(t, "[", LEFT_BRACKET.String())
	assert.Equal(t, "ILLEGAL", Type(42).String())
}
