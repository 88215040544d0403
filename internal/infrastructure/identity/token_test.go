package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProFiveCK/nr-travel-webapp-sub000/internal/domain/entity"
)

func testUser() *entity.User {
	return &entity.User{
		ID:       "user-42",
		Username: "tavita",
		Name:     "Tavita Faleolo",
		Email:    "tavita@treasury.gov.ws",
		Roles:    []string{entity.RoleUser, entity.RoleReviewer},
		Active:   true,
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := manager.Generate(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "tavita", claims.Username)
	assert.Equal(t, "Tavita Faleolo", claims.Name)
	assert.Equal(t, "tavita@treasury.gov.ws", claims.Email)
	assert.Equal(t, []string{entity.RoleUser, entity.RoleReviewer}, claims.Roles)
	assert.Equal(t, "user-42", claims.Subject)
}

func TestTokenManager_ActorFromClaims(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	token, _, err := manager.Generate(testUser())
	require.NoError(t, err)

	claims, err := manager.Parse(token)
	require.NoError(t, err)

	actor := claims.Actor()
	assert.Equal(t, "user-42", actor.ID)
	assert.Equal(t, "Tavita Faleolo", actor.Name)
	assert.True(t, actor.CanReview())
	assert.False(t, actor.HasRole(entity.RoleMinister))
}

func TestTokenManager_Expired(t *testing.T) {
	manager := NewTokenManager("test-secret", -time.Minute)

	token, _, err := manager.Generate(testUser())
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-one", time.Hour).Generate(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("secret-two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_Garbage(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	_, err := manager.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
