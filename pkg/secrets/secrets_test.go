package secrets

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	plaintext := []byte(`{"email":"owner@example.com","password":"hunter2"}`)

	sealed, err := c.Seal(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "hunter2")

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestCipher_SealIsNonDeterministic(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	first, err := c.Seal([]byte("credentials"))
	require.NoError(t, err)
	second, err := c.Seal([]byte("credentials"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCipher_OpenRejectsTampering(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	sealed, err := c.Seal([]byte("credentials"))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	tampered := base64.StdEncoding.EncodeToString(raw)

	_, err = c.Open(tampered)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestCipher_OpenRejectsGarbage(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	_, err = c.Open("not base64 at all!!!")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = c.Open(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}

func TestNewCipher_RejectsBadKeys(t *testing.T) {
	_, err := NewCipher("zz")
	assert.Error(t, err)

	_, err = NewCipher(strings.Repeat("ab", 16))
	assert.Error(t, err)

	_, err = NewCipher(strings.Repeat("ab", 32))
	assert.NoError(t, err)
}
