package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	encoded, err := GenerateToken("u1", "patient", "secret", time.Hour)
	require.NoError(t, err)

	token, err := ValidateToken(encoded, "secret")
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "u1", TokenUserID(token))
}

func TestValidateTokenWrongSecret(t *testing.T) {
	encoded, err := GenerateToken("u1", "patient", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(encoded, "other-secret")
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	fresh, err := GenerateToken("u1", "patient", "secret", time.Hour)
	require.NoError(t, err)
	assert.False(t, TokenExpired(fresh))

	stale, err := GenerateToken("u1", "patient", "secret", -time.Minute)
	require.NoError(t, err)
	assert.True(t, TokenExpired(stale))

	assert.True(t, TokenExpired("garbage"))
}
