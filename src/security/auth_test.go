package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/gainsfolio/backend/src/config"
	"github.com/username/gainsfolio/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.LoadConfig()
	m.Run()
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret-key-that-is-long-enough")

	token, err := svc.GenerateToken("42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", subject)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService("issuer-secret-key-that-is-long-enough")
	verifier := NewAuthService("different-secret-key-that-is-long")

	token, err := issuer.GenerateToken("42")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService("test-secret-key-that-is-long-enough")
	_, err := svc.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestGenerateRefreshTokenIsUnique(t *testing.T) {
	svc := NewAuthService("test-secret-key-that-is-long-enough")

	first, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	second, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPasswordHashing(t *testing.T) {
	svc := NewAuthService("test-secret-key-that-is-long-enough")

	hashed, err := svc.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hashed)

	assert.NoError(t, svc.CompareHashAndPassword(hashed, "correct horse battery staple"))
	assert.Error(t, svc.CompareHashAndPassword(hashed, "wrong password"))
}
