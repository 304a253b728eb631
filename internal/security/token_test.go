package security

import (
	"testing"
	"time"

	"autofleet-backoffice/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-0123456789abcdefghij"

func TestTokenRoundTrip(t *testing.T) {
	manager := NewTokenManager(testSecret, time.Hour)
	user := &domain.User{ID: 12, Email: "agent@autofleet.local", Role: domain.UserRoleManager}

	token, err := manager.GenerateAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, "agent@autofleet.local", claims.Email)
	assert.Equal(t, domain.UserRoleManager, claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	manager := NewTokenManager(testSecret, time.Hour)
	user := &domain.User{ID: 1, Role: domain.UserRoleAdmin}

	token, err := manager.GenerateAccessToken(user)
	require.NoError(t, err)

	other := NewTokenManager("another-secret-key-0123456789abcdef", time.Hour)
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	manager := NewTokenManager(testSecret, -time.Minute)
	user := &domain.User{ID: 1, Role: domain.UserRoleAgent}

	token, err := manager.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	manager := NewTokenManager(testSecret, time.Hour)
	_, err := manager.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
