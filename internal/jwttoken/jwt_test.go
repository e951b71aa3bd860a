package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/MatheusPlinio/DotWysion/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-key", "dotwysion-test")

	token, err := svc.GenerateAccessToken("u1", "Test User", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Test User", claims.UserName)
}

func TestExpiredToken(t *testing.T) {
	svc := NewService("test-key", "dotwysion-test")

	token, err := svc.GenerateAccessToken("u1", "Test User", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestWrongSigningKey(t *testing.T) {
	issuer := NewService("key-a", "dotwysion-test")
	verifier := NewService("key-b", "dotwysion-test")

	token, err := issuer.GenerateAccessToken("u1", "Test User", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestTokenWithoutUserID(t *testing.T) {
	svc := NewService("test-key", "dotwysion-test")

	token, err := svc.GenerateAccessToken("", "", time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing user identity")
}
