package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

type mockAuthenticator struct {
	authenticateFunc func(ctx context.Context, username, password string) (*entity.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, username, password)
	}
	return nil, nil
}

type mockTokenIssuer struct {
	generateFunc func(user *entity.User) (string, time.Time, error)
}

func (m *mockTokenIssuer) Generate(user *entity.User) (string, time.Time, error) {
	if m.generateFunc != nil {
		return m.generateFunc(user)
	}
	return "token-abc", time.Now().Add(time.Hour), nil
}

func TestAuthService_Login(t *testing.T) {
	user := &entity.User{
		ID:       "u-1",
		Username: "tamaki",
		Name:     "Tamaki Dageago",
		Email:    "tamaki@dept.example.gov",
		Roles:    []string{entity.RoleUser},
		Active:   true,
	}

	auth := &mockAuthenticator{
		authenticateFunc: func(ctx context.Context, username, password string) (*entity.User, error) {
			if username == "tamaki" && password == "correct-horse" {
				return user, nil
			}
			return nil, nil
		},
	}

	svc := NewAuthService(auth, &mockTokenIssuer{}, &mockLogger{})

	result, err := svc.Login(context.Background(), "tamaki", "correct-horse")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if result.Token == "" {
		t.Error("token not issued")
	}
	if result.User.ID != "u-1" {
		t.Errorf("user id = %v, want u-1", result.User.ID)
	}
	if result.ExpiresAt.IsZero() {
		t.Error("expiry not set")
	}
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	svc := NewAuthService(&mockAuthenticator{}, &mockTokenIssuer{}, &mockLogger{})

	_, err := svc.Login(context.Background(), "tamaki", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_Login_BackendError(t *testing.T) {
	auth := &mockAuthenticator{
		authenticateFunc: func(ctx context.Context, username, password string) (*entity.User, error) {
			return nil, errors.New("directory unavailable")
		},
	}

	svc := NewAuthService(auth, &mockTokenIssuer{}, &mockLogger{})

	_, err := svc.Login(context.Background(), "tamaki", "correct-horse")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want a backend error distinct from bad credentials", err)
	}
}
