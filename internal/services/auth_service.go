// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/laihecha/tea-api/internal/config"
	"github.com/laihecha/tea-api/internal/utils"
)

// ErrInvalidSubject marks a valid token issued to someone other than the admin.
var ErrInvalidSubject = errors.New("invalid subject")

// AuthService authenticates the single configured admin account.
type AuthService struct {
	admin  config.AdminConfig
	tokens *utils.TokenManager
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		admin:  cfg.Admin,
		tokens: utils.NewTokenManager(cfg.JWT.SecretKey, time.Duration(cfg.JWT.ExpireMinutes)*time.Minute),
	}
}

// Login checks the bcrypt hash when one is configured, otherwise the plain
// password. With neither configured every login is refused.
func (s *AuthService) Login(req *LoginRequest) (*TokenResponse, error) {
	if req.Username != s.admin.Username {
		return nil, fmt.Errorf("%w: bad credentials", ErrUnauthorized)
	}

	var ok bool
	switch {
	case s.admin.PasswordHash != "":
		matched, err := utils.CheckPasswordHash(req.Password, s.admin.PasswordHash)
		if errors.Is(err, utils.ErrMalformedHash) {
			logrus.Error("ADMIN_PASSWORD_HASH is not a valid bcrypt hash")
			return nil, fmt.Errorf("%w: invalid ADMIN_PASSWORD_HASH", ErrConfig)
		}
		ok = matched
	case s.admin.Password != "":
		ok = utils.CheckPlainPassword(req.Password, s.admin.Password)
	default:
		logrus.Warn("Admin login refused: no ADMIN_PASSWORD or ADMIN_PASSWORD_HASH configured")
	}

	if !ok {
		return nil, fmt.Errorf("%w: bad credentials", ErrUnauthorized)
	}

	token, err := s.tokens.Generate(s.admin.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &TokenResponse{Token: token}, nil
}

// Authenticate validates a bearer token and that it was issued to the admin.
func (s *AuthService) Authenticate(token string) (string, error) {
	subject, err := s.tokens.Validate(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w: %v", ErrUnauthorized, utils.ErrInvalidToken, err)
	}
	if subject != s.admin.Username {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidSubject)
	}
	return subject, nil
}
