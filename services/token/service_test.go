package token

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orgaccount-backend/shared/database/models"
	"orgaccount-backend/shared/database/repository"
	utils "orgaccount-backend/shared/utils/auth"
)

func newTestService(t *testing.T) (*Service, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewService(store.Tokens(), store.Accounts()), store
}

func seedAccount(t *testing.T, store *repository.MemoryStore, email, password, status string) *models.User {
	t.Helper()

	digest, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Email:    email,
		Password: digest,
		Role:     models.RoleStandard,
		Status:   status,
	}
	require.NoError(t, store.Accounts().Create(context.Background(), user))
	return user
}

func TestLogin(t *testing.T) {
	svc, store := newTestService(t)
	user := seedAccount(t, store, "jane@example.com", "s3cure-enough-pw", models.StatusActive)

	key, loggedIn, err := svc.Login(context.Background(), "jane@example.com", "s3cure-enough-pw")
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.Equal(t, user.ID, loggedIn.ID)

	stored, err := store.Accounts().GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestLoginReusesToken(t *testing.T) {
	svc, store := newTestService(t)
	seedAccount(t, store, "jane@example.com", "s3cure-enough-pw", models.StatusActive)

	first, _, err := svc.Login(context.Background(), "jane@example.com", "s3cure-enough-pw")
	require.NoError(t, err)

	second, _, err := svc.Login(context.Background(), "jane@example.com", "s3cure-enough-pw")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoginNormalizesEmail(t *testing.T) {
	svc, store := newTestService(t)
	seedAccount(t, store, "jane@example.com", "s3cure-enough-pw", models.StatusActive)

	_, _, err := svc.Login(context.Background(), "  Jane@Example.COM ", "s3cure-enough-pw")
	assert.NoError(t, err)
}

func TestLoginPendingAccountSucceeds(t *testing.T) {
	svc, store := newTestService(t)
	seedAccount(t, store, "pending@example.com", "s3cure-enough-pw", models.StatusPending)

	key, _, err := svc.Login(context.Background(), "pending@example.com", "s3cure-enough-pw")
	require.NoError(t, err)
	assert.NotEmpty(t, key)
}

func TestLoginFailures(t *testing.T) {
	svc, store := newTestService(t)
	seedAccount(t, store, "jane@example.com", "s3cure-enough-pw", models.StatusActive)
	seedAccount(t, store, "gone@example.com", "s3cure-enough-pw", models.StatusDeleted)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "s3cure-enough-pw"},
		{"wrong password", "jane@example.com", "wrong-password"},
		{"deleted account", "gone@example.com", "s3cure-enough-pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tt.email, tt.password)
			// Identical failure for every cause, no account enumeration
			assert.ErrorIs(t, err, ErrAuthenticationFailed)
		})
	}
}

func TestResolve(t *testing.T) {
	svc, store := newTestService(t)
	user := seedAccount(t, store, "jane@example.com", "s3cure-enough-pw", models.StatusActive)

	key, _, err := svc.Login(context.Background(), "jane@example.com", "s3cure-enough-pw")
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestResolveFailures(t *testing.T) {
	svc, store := newTestService(t)
	user := seedAccount(t, store, "jane@example.com", "s3cure-enough-pw", models.StatusActive)

	key, _, err := svc.Login(context.Background(), "jane@example.com", "s3cure-enough-pw")
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Resolve(context.Background(), "0000000000000000000000000000000000000000")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Soft deletion kills the token immediately
	require.NoError(t, store.Accounts().UpdateStatus(context.Background(), user.ID, models.StatusDeleted))
	_, err = svc.Resolve(context.Background(), key)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
