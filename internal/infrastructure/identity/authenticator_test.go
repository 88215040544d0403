package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

type stubUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*entity.User, error)
}

func (s *stubUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (s *stubUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return nil, nil
}
func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	if s.getByUsernameFn != nil {
		return s.getByUsernameFn(ctx, username)
	}
	return nil, nil
}
func (s *stubUserRepo) ListByRole(ctx context.Context, role string) ([]*entity.User, error) {
	return nil, nil
}
func (s *stubUserRepo) CountByRole(ctx context.Context, role string) (int, error) { return 0, nil }

func TestLocalAuthenticator_Authenticate(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	active := &entity.User{
		ID:           "user-1",
		Username:     "mele",
		PasswordHash: hash,
		Roles:        []string{entity.RoleUser},
		Active:       true,
	}
	disabled := &entity.User{
		ID:           "user-2",
		Username:     "ioane",
		PasswordHash: hash,
		Roles:        []string{entity.RoleUser},
		Active:       false,
	}

	repo := &stubUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*entity.User, error) {
			switch username {
			case "mele":
				return active, nil
			case "ioane":
				return disabled, nil
			}
			return nil, nil
		},
	}
	auth := NewLocalAuthenticator(repo, zap.NewNop())

	tests := []struct {
		name     string
		username string
		password string
		want     *entity.User
	}{
		{name: "valid credentials", username: "mele", password: "correct horse", want: active},
		{name: "wrong password", username: "mele", password: "battery staple", want: nil},
		{name: "unknown username", username: "nobody", password: "correct horse", want: nil},
		{name: "disabled account", username: "ioane", password: "correct horse", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := auth.Authenticate(context.Background(), tt.username, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, user)
		})
	}
}

func TestLocalAuthenticator_BackendError(t *testing.T) {
	boom := errors.New("directory offline")
	repo := &stubUserRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*entity.User, error) {
			return nil, boom
		},
	}
	auth := NewLocalAuthenticator(repo, zap.NewNop())

	user, err := auth.Authenticate(context.Background(), "mele", "correct horse")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, boom)
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, VerifyPassword("s3cret-pass", hash))
	assert.False(t, VerifyPassword("other", hash))
}
