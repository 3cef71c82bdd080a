package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	keyHex, saltHex, found := strings.Cut(hash, ".")
	require.True(t, found)
	assert.Len(t, keyHex, 128) // 64-byte key, hex encoded
	assert.Len(t, saltHex, 32) // 16-byte salt, hex encoded

	ok, err := VerifyPassword(hash, "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "wrong-pass")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSaltsAreUnique(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordFailsClosedOnMalformedCredential(t *testing.T) {
	cases := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"no separator", "deadbeef"},
		{"empty key", ".deadbeef"},
		{"empty salt", "deadbeef."},
		{"non-hex key", "zzzz.deadbeef"},
		{"non-hex salt", "deadbeef.zzzz"},
		{"plaintext leak", "password123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := VerifyPassword(tc.stored, "anything")
			assert.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerifyPasswordEmptyPlaintext(t *testing.T) {
	hash, err := HashPassword("")
	require.NoError(t, err)

	ok, err := VerifyPassword(hash, "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(hash, "not empty")
	require.NoError(t, err)
	assert.False(t, ok)
}
