package identity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/application/port"
	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

// LocalAuthenticator verifies credentials against the local user directory.
// Unknown usernames, wrong passwords and disabled accounts all come back as
// (nil, nil) so callers cannot tell them apart.
type LocalAuthenticator struct {
	users  port.UserRepository
	logger *zap.Logger
}

// NewLocalAuthenticator creates a new local authenticator
func NewLocalAuthenticator(users port.UserRepository, logger *zap.Logger) *LocalAuthenticator {
	return &LocalAuthenticator{
		users:  users,
		logger: logger,
	}
}

// Authenticate implements port.Authenticator
func (a *LocalAuthenticator) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		return nil, nil
	}
	if !user.Active {
		a.logger.Info("Login attempt on disabled account", zap.String("username", username))
		return nil, nil
	}
	if !VerifyPassword(password, user.PasswordHash) {
		return nil, nil
	}

	return user, nil
}

// Verify interface compliance
var _ port.Authenticator = (*LocalAuthenticator)(nil)
