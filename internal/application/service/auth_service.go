package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

// TokenIssuer mints access tokens for authenticated users
type TokenIssuer interface {
	Generate(user *entity.User) (string, time.Time, error)
}

// LoginResult carries a fresh access token and the account it belongs to
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *entity.User `json:"user"`
}

// AuthService handles login against the configured directory
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

type authServiceImpl struct {
	authenticator port.Authenticator
	tokens        TokenIssuer
	logger        Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(authenticator port.Authenticator, tokens TokenIssuer, logger Logger) AuthService {
	return &authServiceImpl{
		authenticator: authenticator,
		tokens:        tokens,
		logger:        logger,
	}
}

// Login verifies the credentials and issues an access token. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Error("Authentication backend error", "error", err, "username", username)
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if user == nil {
		s.logger.Info("Login rejected", "username", username)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Generate(user)
	if err != nil {
		s.logger.Error("Failed to issue token", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("Login succeeded", "user_id", user.ID, "username", user.Username)
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
