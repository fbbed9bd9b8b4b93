package organization

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"orgaccount-backend/shared/database/models"
	"orgaccount-backend/shared/database/repository"
	"orgaccount-backend/shared/utils/query"
)

// MemberPageSize is the fixed page size for organization member listings.
const MemberPageSize = 5

var (
	// ErrUnknownOrganization reports an operation against a nonexistent organization.
	ErrUnknownOrganization = errors.New("Organization not found.")
	// ErrUnknownAccount reports a roster update naming a nonexistent account.
	ErrUnknownAccount = errors.New("User not found.")
)

// Service manages organizations and their member rosters.
type Service struct {
	orgs     repository.OrganizationRepository
	accounts repository.AccountRepository
}

func NewService(orgs repository.OrganizationRepository, accounts repository.AccountRepository) *Service {
	return &Service{orgs: orgs, accounts: accounts}
}

// CreateParams carries an organization creation request. When OwnerID is
// nil the caller becomes the owner.
type CreateParams struct {
	Name     string
	Location string
	Phone    string
	OwnerID  *uuid.UUID
}

// Create registers a new organization.
func (s *Service) Create(ctx context.Context, params CreateParams, caller *models.User) (*models.Organization, error) {
	ownerID := params.OwnerID
	if ownerID == nil && caller != nil {
		ownerID = &caller.ID
	}

	if ownerID != nil {
		if _, err := s.accounts.GetByID(ctx, *ownerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUnknownAccount
			}
			return nil, err
		}
	}

	org := &models.Organization{
		Name:     params.Name,
		Location: params.Location,
		Phone:    params.Phone,
		OwnerID:  ownerID,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

// Get returns the organization with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownOrganization
		}
		return nil, err
	}
	return org, nil
}

// ListMembers returns one fixed-size page of the organization's roster in
// creation order.
func (s *Service) ListMembers(ctx context.Context, orgID uuid.UUID, page int) ([]models.User, query.PaginationResponse, error) {
	if _, err := s.Get(ctx, orgID); err != nil {
		return nil, query.PaginationResponse{}, err
	}

	if page < 1 {
		page = 1
	}

	members, total, err := s.orgs.ListMembers(ctx, orgID, page, MemberPageSize)
	if err != nil {
		return nil, query.PaginationResponse{}, err
	}

	return members, query.BuildPaginationResponse(page, MemberPageSize, total), nil
}

// AddMembers moves the given accounts into the organization. The update is
// a set union over the roster: accounts already in the organization stay,
// so repeating the call is harmless. Every id must name an existing
// account or nothing changes.
func (s *Service) AddMembers(ctx context.Context, orgID uuid.UUID, userIDs []uuid.UUID) error {
	if _, err := s.Get(ctx, orgID); err != nil {
		return err
	}

	// Dedupe so a repeated id cannot trip the repository's existence check.
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	unique := make([]uuid.UUID, 0, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	if len(unique) == 0 {
		return nil
	}

	if err := s.orgs.AddMembers(ctx, orgID, unique); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnknownAccount
		}
		return err
	}
	return nil
}
