package token

import (
	"context"
	"errors"

	"orgaccount-backend/shared/database/models"
	"orgaccount-backend/shared/database/repository"
	utils "orgaccount-backend/shared/utils/auth"
)

var (
	// ErrAuthenticationFailed is deliberately generic: callers can never
	// tell an unknown email from a wrong password.
	ErrAuthenticationFailed = errors.New("Unable to authenticate with provided credentials")
	// ErrUnauthenticated reports a bearer token that resolves to nothing.
	ErrUnauthenticated = errors.New("Invalid token.")
)

// Service issues and resolves opaque bearer tokens.
type Service struct {
	tokens   repository.TokenRepository
	accounts repository.AccountRepository
}

func NewService(tokens repository.TokenRepository, accounts repository.AccountRepository) *Service {
	return &Service{tokens: tokens, accounts: accounts}
}

// Login validates credentials and returns the account's token. The token
// is created on first login and reused afterwards, never rotated. Accounts
// pending activation may log in; soft-deleted accounts may not.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.accounts.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	if user.Status == models.StatusDeleted {
		return "", nil, ErrAuthenticationFailed
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", nil, ErrAuthenticationFailed
	}

	key, err := s.IssueOrReuse(ctx, user)
	if err != nil {
		return "", nil, err
	}

	// Updating last-login also invalidates any outstanding activation
	// ticket, which is derived from it.
	if err := s.accounts.TouchLastLogin(ctx, user.ID); err != nil {
		return "", nil, err
	}

	return key, user, nil
}

// IssueOrReuse returns the token bound to the account, creating one
// atomically when none exists. Idempotent: repeated calls return the same
// key, and a race between two first logins leaves exactly one token.
func (s *Service) IssueOrReuse(ctx context.Context, user *models.User) (string, error) {
	candidate, err := utils.GenerateAuthTokenKey()
	if err != nil {
		return "", err
	}
	return s.tokens.GetOrCreate(ctx, user.ID, candidate)
}

// Resolve maps a bearer token key to its account. Soft-deleted accounts
// no longer authenticate.
func (s *Service) Resolve(ctx context.Context, key string) (*models.User, error) {
	if key == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.tokens.FindUserByKey(ctx, key)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if user.Status == models.StatusDeleted {
		return nil, ErrUnauthenticated
	}

	return user, nil
}
