package controllers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRefreshTokenDigestIsStableAndBcryptSized(t *testing.T) {
	// JWTs exceed bcrypt's 72-byte input limit, so tokens are digested first.
	longToken := strings.Repeat("eyJhbGciOiJIUzI1NiJ9.", 10)

	digest := refreshTokenDigest(longToken)
	assert.Len(t, digest, 32)
	assert.Equal(t, digest, refreshTokenDigest(longToken))
	assert.NotEqual(t, digest, refreshTokenDigest(longToken+"x"))

	hash, err := bcrypt.GenerateFromPassword(digest, bcrypt.DefaultCost)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, refreshTokenDigest(longToken)))
	assert.Error(t, bcrypt.CompareHashAndPassword(hash, refreshTokenDigest("other")))
}
