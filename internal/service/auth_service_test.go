package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/farmacal/roster-api/pkg/errors"
)

func newAuthFixture(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService(AuthConfig{
		JWTSecret:  "test-secret",
		Expiration: time.Hour,
		AdminUser:  "admin",
		AdminHash:  string(hash),
	}, nil, nil)
}

func TestAuthServiceLoginAndValidate(t *testing.T) {
	svc := newAuthFixture(t)

	resp, err := svc.Login(LoginRequest{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	subject, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.Login(LoginRequest{Username: "admin", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(LoginRequest{Username: "nobody", Password: "secret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
