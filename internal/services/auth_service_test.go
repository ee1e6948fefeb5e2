package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laihecha/tea-api/internal/config"
	"github.com/laihecha/tea-api/internal/utils"
)

func authConfig(admin config.AdminConfig) *config.Config {
	return &config.Config{
		Admin: admin,
		JWT:   config.JWTConfig{SecretKey: "test-secret", ExpireMinutes: 60},
	}
}

func TestLoginWithPlainPassword(t *testing.T) {
	svc := NewAuthService(authConfig(config.AdminConfig{Username: "admin", Password: "s3cret"}))

	res, err := svc.Login(&LoginRequest{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	subject, err := svc.Authenticate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)

	_, err = svc.Login(&LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(&LoginRequest{Username: "root", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginPrefersHash(t *testing.T) {
	hash, err := utils.HashPassword("hashed-pass")
	require.NoError(t, err)

	svc := NewAuthService(authConfig(config.AdminConfig{Username: "admin", Password: "plain", PasswordHash: hash}))

	_, err = svc.Login(&LoginRequest{Username: "admin", Password: "hashed-pass"})
	assert.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Username: "admin", Password: "plain"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginMalformedHashIsConfigError(t *testing.T) {
	svc := NewAuthService(authConfig(config.AdminConfig{Username: "admin", PasswordHash: "not-a-bcrypt-hash"}))

	_, err := svc.Login(&LoginRequest{Username: "admin", Password: "anything"})
	assert.ErrorIs(t, err, ErrConfig)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestLoginWithoutConfiguredPasswordIsDenied(t *testing.T) {
	svc := NewAuthService(authConfig(config.AdminConfig{Username: "admin"}))

	_, err := svc.Login(&LoginRequest{Username: "admin", Password: ""})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateRejectsForeignTokens(t *testing.T) {
	svc := NewAuthService(authConfig(config.AdminConfig{Username: "admin", Password: "pw"}))

	_, err := svc.Authenticate("garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	other := utils.NewTokenManager("test-secret", time.Hour)
	token, err := other.Generate("someone-else")
	require.NoError(t, err)
	_, err = svc.Authenticate(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	forged := utils.NewTokenManager("another-secret", time.Hour)
	token, err = forged.Generate("admin")
	require.NoError(t, err)
	_, err = svc.Authenticate(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateDistinguishesSubjectFromToken(t *testing.T) {
	svc := NewAuthService(authConfig(config.AdminConfig{Username: "admin", Password: "pw"}))

	_, err := svc.Authenticate("garbage")
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrInvalidSubject)

	token, err := utils.NewTokenManager("test-secret", time.Hour).Generate("guest")
	require.NoError(t, err)
	_, err = svc.Authenticate(token)
	assert.ErrorIs(t, err, ErrInvalidSubject)
}
