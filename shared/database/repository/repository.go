package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"orgaccount-backend/shared/database/models"
	"orgaccount-backend/shared/utils/query"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a write would violate email uniqueness.
	ErrDuplicateEmail = errors.New("email already exists")
)

// AccountRepository persists user accounts. It is the only writer of the
// users table; all lifecycle transitions go through it.
type AccountRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, params query.FilterParams) ([]models.User, int64, error)
	// Update overwrites profile fields (email, names, gender, avatar) only.
	Update(ctx context.Context, user *models.User) error
	// UpdatePassword replaces the stored digest in a single write.
	UpdatePassword(ctx context.Context, id uuid.UUID, digest string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

// TokenRepository persists opaque bearer tokens.
type TokenRepository interface {
	// GetOrCreate returns the token key bound to the user, creating it from
	// candidate atomically when none exists. Two concurrent calls for the
	// same user must both observe the same surviving key.
	GetOrCreate(ctx context.Context, userID uuid.UUID, candidate string) (string, error)
	FindUserByKey(ctx context.Context, key string) (*models.User, error)
}

// OrganizationRepository persists organizations and their rosters.
// Membership is many accounts to one organization.
type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetByName(ctx context.Context, name string) (*models.Organization, error)
	ListMembers(ctx context.Context, orgID uuid.UUID, page, limit int) ([]models.User, int64, error)
	// AddMembers moves every given account into the organization. All ids
	// must resolve to existing accounts or nothing is changed. Accounts
	// already on the roster are left untouched (set union, not append).
	AddMembers(ctx context.Context, orgID uuid.UUID, userIDs []uuid.UUID) error
}
