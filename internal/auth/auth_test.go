package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.True(t, ComparePassword(hash, "correct horse battery"))
	assert.False(t, ComparePassword(hash, "wrong password"))
	assert.False(t, ComparePassword("not-a-hash", "correct horse battery"))
}

func TestJWT_SignVerifyRoundTrip(t *testing.T) {
	j := NewJWT("test-secret")

	token, err := j.Sign(42)
	require.NoError(t, err)

	uid, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	token, err := NewJWT("secret-a").Sign(42)
	require.NoError(t, err)

	_, err = NewJWT("secret-b").Verify(token)
	assert.Error(t, err)
}

func TestJWT_RejectsGarbage(t *testing.T) {
	j := NewJWT("test-secret")

	_, err := j.Verify("not.a.token")
	assert.Error(t, err)

	_, err = j.Verify("")
	assert.Error(t, err)
}
