package account

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"orgaccount-backend/shared/database/models"
	"orgaccount-backend/shared/database/repository"
	utils "orgaccount-backend/shared/utils/auth"
	"orgaccount-backend/shared/utils/query"
)

// ActivationRequester issues an activation link for a freshly registered
// account. Failures are observability events, never registration failures.
type ActivationRequester interface {
	Request(ctx context.Context, user *models.User) error
}

// Service is the account registry: the sole writer of account records and
// the owner of the pending -> active -> deleted lifecycle.
type Service struct {
	accounts       repository.AccountRepository
	orgs           repository.OrganizationRepository
	activation     ActivationRequester
	defaultOrgName string
}

func NewService(accounts repository.AccountRepository, orgs repository.OrganizationRepository, activation ActivationRequester, defaultOrgName string) *Service {
	return &Service{
		accounts:       accounts,
		orgs:           orgs,
		activation:     activation,
		defaultOrgName: defaultOrgName,
	}
}

// RegisterParams carries a registration request.
type RegisterParams struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Gender          string
	OrganizationID  *uuid.UUID
}

// Register creates a new account in the PENDING state and dispatches an
// activation email. Email dispatch failure does not fail registration.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	email := utils.NormalizeEmail(params.Email)
	if err := utils.ValidateEmail(email); err != nil {
		return nil, ErrInvalidEmail
	}

	if params.Gender != models.GenderMale && params.Gender != models.GenderFemale {
		return nil, ErrInvalidGender
	}

	if violations := utils.PasswordViolations(params.Password); len(violations) > 0 {
		return nil, &WeakPasswordError{Violations: violations}
	}

	if params.Password != params.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	orgID, err := s.resolveOrganization(ctx, params.OrganizationID)
	if err != nil {
		return nil, err
	}

	digest, err := utils.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:          email,
		Password:       digest,
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		Gender:         params.Gender,
		Role:           models.RoleStandard,
		Status:         models.StatusPending,
		OrganizationID: &orgID,
	}

	if err := s.accounts.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	if s.activation != nil {
		if err := s.activation.Request(ctx, user); err != nil {
			log.Printf("⚠️ Activation email for %s could not be sent: %v", user.Email, err)
		}
	}

	return user, nil
}

func (s *Service) resolveOrganization(ctx context.Context, orgID *uuid.UUID) (uuid.UUID, error) {
	if orgID != nil {
		org, err := s.orgs.GetByID(ctx, *orgID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return uuid.Nil, ErrUnknownOrganization
			}
			return uuid.Nil, err
		}
		return org.ID, nil
	}

	// Every account belongs to an organization; the bootstrap seeder
	// guarantees the default one exists.
	org, err := s.orgs.GetByName(ctx, s.defaultOrgName)
	if err != nil {
		return uuid.Nil, err
	}
	return org.ID, nil
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownAccount
		}
		return nil, err
	}
	return user, nil
}

// List returns accounts in creation order with pagination metadata.
func (s *Service) List(ctx context.Context, params query.FilterParams) ([]models.User, int64, error) {
	return s.accounts.List(ctx, params)
}

// UpdateParams carries a profile update. Nil fields are left unchanged;
// a password can never travel through this path.
type UpdateParams struct {
	Email     *string
	FirstName *string
	LastName  *string
	Gender    *string
	Avatar    *string
}

// Update overwrites profile fields only. Email changes re-check uniqueness
// excluding the account itself.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Email != nil {
		email := utils.NormalizeEmail(*params.Email)
		if err := utils.ValidateEmail(email); err != nil {
			return nil, ErrInvalidEmail
		}
		user.Email = email
	}
	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}
	if params.Gender != nil {
		if *params.Gender != models.GenderMale && *params.Gender != models.GenderFemale {
			return nil, ErrInvalidGender
		}
		user.Gender = *params.Gender
	}
	if params.Avatar != nil {
		user.Avatar = *params.Avatar
	}

	if err := s.accounts.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the old password, enforces the strength policy
// on the new one and replaces the stored digest.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword, confirmPassword string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if !utils.CheckPasswordHash(oldPassword, user.Password) {
		return ErrOldPasswordMismatch
	}

	if violations := utils.PasswordViolations(newPassword); len(violations) > 0 {
		return &WeakPasswordError{Violations: violations}
	}

	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	digest, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.accounts.UpdatePassword(ctx, id, digest)
}

// Deactivate soft-deletes the account. Deactivating an already deleted
// account is a no-op success.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if user.Status == models.StatusDeleted {
		return nil
	}

	return s.accounts.UpdateStatus(ctx, id, models.StatusDeleted)
}

// SetAvatar stores the uploaded avatar URI on the account.
func (s *Service) SetAvatar(ctx context.Context, id uuid.UUID, uri string) (*models.User, error) {
	return s.Update(ctx, id, UpdateParams{Avatar: &uri})
}
