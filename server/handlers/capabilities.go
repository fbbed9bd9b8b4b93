package handlers

import (
	"context"

	"github.com/google/uuid"

	"orgaccount-backend/services/account"
	"orgaccount-backend/shared/database/models"
	"orgaccount-backend/shared/utils/query"
)

// Handlers consume registry capabilities, not the registry itself: each
// endpoint group names exactly the operations it is allowed to reach.

// Registrar creates new accounts.
type Registrar interface {
	Register(ctx context.Context, params account.RegisterParams) (*models.User, error)
}

// AccountReader looks accounts up.
type AccountReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params query.FilterParams) ([]models.User, int64, error)
}

// AccountWriter updates profile fields. Passwords cannot travel through it.
type AccountWriter interface {
	Update(ctx context.Context, id uuid.UUID, params account.UpdateParams) (*models.User, error)
	SetAvatar(ctx context.Context, id uuid.UUID, uri string) (*models.User, error)
}

// PasswordChanger replaces an account's credential.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword, confirmPassword string) error
}

// SoftDeleter marks accounts deleted without removing them.
type SoftDeleter interface {
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// AccountDirectory is the full capability set the user endpoints compose.
type AccountDirectory interface {
	AccountReader
	AccountWriter
	PasswordChanger
	SoftDeleter
}
