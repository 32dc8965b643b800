package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIKey(t *testing.T) {
	key, hash, prefix, err := NewAPIKey()
	require.NoError(t, err)

	assert.True(t, LooksLikeAPIKey(key))
	assert.True(t, strings.HasPrefix(key, prefix))
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashAPIKey(key))
	assert.Equal(t, hash, HashAPIKey(" "+key+"\n"))

	other, otherHash, _, err := NewAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
	assert.NotEqual(t, hash, otherHash)
}

func TestLooksLikeAPIKey(t *testing.T) {
	assert.False(t, LooksLikeAPIKey(""))
	assert.False(t, LooksLikeAPIKey("sp_abc"))
	assert.False(t, LooksLikeAPIKey("sk_0123456789abcdef"))
}
