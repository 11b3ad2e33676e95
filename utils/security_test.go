package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("round trip verifies", func(t *testing.T) {
		hash, err := HashPassword("correct horse battery staple")
		require.NoError(t, err)

		parts := strings.SplitN(hash, ":", 2)
		require.Len(t, parts, 2, "stored format is salt:hash")

		assert.True(t, VerifyPassword("correct horse battery staple", hash))
		assert.False(t, VerifyPassword("wrong password", hash))
	})

	t.Run("salts differ between hashes", func(t *testing.T) {
		first, err := HashPassword("correct horse battery staple")
		require.NoError(t, err)
		second, err := HashPassword("correct horse battery staple")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		_, err := HashPassword("short")
		require.Error(t, err)
	})
}

func TestVerifyPasswordMalformed(t *testing.T) {
	assert.False(t, VerifyPassword("anything", "no-separator"))
	assert.False(t, VerifyPassword("anything", "nothex:nothex"))
	assert.False(t, VerifyPassword("anything", ""))
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(48)
	require.NoError(t, err)
	assert.Len(t, token, 96, "hex doubles the byte length")

	other, err := GenerateToken(48)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashToken(t *testing.T) {
	first := HashToken("some-token")
	second := HashToken("some-token")

	assert.Equal(t, first, second, "hashing is deterministic for lookups")
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, HashToken("other-token"))
}
