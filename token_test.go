package docdex_test

import (
	"testing"

	"github.com/fwojciec/docdex"
	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, docdex.CountTokens(""))
	assert.Equal(t, 0, docdex.CountTokens("   \n\t"))
	assert.Equal(t, 3, docdex.CountTokens("create an instance"))
	assert.Equal(t, 3, docdex.CountTokens("  create\nan\t instance  "))
}

func TestTruncateTokens(t *testing.T) {
	t.Parallel()

	t.Run("short text is unchanged", func(t *testing.T) {
		t.Parallel()

		text := "create an\ninstance"
		assert.Equal(t, text, docdex.TruncateTokens(text, 10))
	})

	t.Run("long text is cut to n tokens", func(t *testing.T) {
		t.Parallel()

		got := docdex.TruncateTokens("a b c d e", 3)

		assert.Equal(t, "a b c", got)
		assert.Equal(t, 3, docdex.CountTokens(got))
	})

	t.Run("zero budget yields empty string", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, docdex.TruncateTokens("a b c", 0))
	})
}
