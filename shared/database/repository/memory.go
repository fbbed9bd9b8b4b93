package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"orgaccount-backend/shared/database/models"
	"orgaccount-backend/shared/utils/query"
)

// MemoryStore is an in-memory implementation of all repositories. It backs
// unit tests and local development without a postgres instance, and honors
// the same atomicity contracts as the gorm implementation (one surviving
// token per account, all-or-nothing roster updates).
type MemoryStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	orgs      map[uuid.UUID]*models.Organization
	tokens    map[uuid.UUID]string // user id -> key
	tokenKeys map[string]uuid.UUID // key -> user id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[uuid.UUID]*models.User),
		orgs:      make(map[uuid.UUID]*models.Organization),
		tokens:    make(map[uuid.UUID]string),
		tokenKeys: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) Accounts() AccountRepository           { return (*memoryAccounts)(s) }
func (s *MemoryStore) Tokens() TokenRepository               { return (*memoryTokens)(s) }
func (s *MemoryStore) Organizations() OrganizationRepository { return (*memoryOrgs)(s) }

type memoryAccounts MemoryStore

func (s *memoryAccounts) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *memoryAccounts) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memoryAccounts) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryAccounts) List(_ context.Context, params query.FilterParams) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []models.User
	for _, user := range s.users {
		if status, ok := params.Filters["status"]; ok && user.Status != status {
			continue
		}
		if role, ok := params.Filters["role"]; ok && user.Role != role {
			continue
		}
		if params.Search != "" {
			needle := strings.ToLower(params.Search)
			haystack := strings.ToLower(user.FirstName + " " + user.LastName + " " + user.Email)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		all = append(all, *user)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].Email < all[j].Email
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := int64(len(all))
	start := (params.Page - 1) * params.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *memoryAccounts) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range s.users {
		if id != user.ID && other.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	existing.Email = user.Email
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.Gender = user.Gender
	existing.Avatar = user.Avatar
	existing.OrganizationID = user.OrganizationID
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memoryAccounts) UpdatePassword(_ context.Context, id uuid.UUID, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Password = digest
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memoryAccounts) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Status = status
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *memoryAccounts) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	user.LastLogin = &now
	return nil
}

type memoryTokens MemoryStore

func (s *memoryTokens) GetOrCreate(_ context.Context, userID uuid.UUID, candidate string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key, ok := s.tokens[userID]; ok {
		return key, nil
	}
	s.tokens[userID] = candidate
	s.tokenKeys[candidate] = userID
	return candidate, nil
}

func (s *memoryTokens) FindUserByKey(_ context.Context, key string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.tokenKeys[key]
	if !ok {
		return nil, ErrNotFound
	}
	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

type memoryOrgs MemoryStore

func (s *memoryOrgs) Create(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	now := time.Now().UTC()
	org.CreatedAt = now
	org.UpdatedAt = now
	clone := *org
	s.orgs[org.ID] = &clone
	return nil
}

func (s *memoryOrgs) GetByID(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, ok := s.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *org
	return &clone, nil
}

func (s *memoryOrgs) GetByName(_ context.Context, name string) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, org := range s.orgs {
		if org.Name == name {
			clone := *org
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memoryOrgs) ListMembers(_ context.Context, orgID uuid.UUID, page, limit int) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var members []models.User
	for _, user := range s.users {
		if user.OrganizationID != nil && *user.OrganizationID == orgID {
			members = append(members, *user)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].Email < members[j].Email
		}
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})

	total := int64(len(members))
	start := (page - 1) * limit
	if start > len(members) {
		start = len(members)
	}
	end := start + limit
	if end > len(members) {
		end = len(members)
	}
	return members[start:end], total, nil
}

func (s *memoryOrgs) AddMembers(_ context.Context, orgID uuid.UUID, userIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[orgID]; !ok {
		return ErrNotFound
	}
	for _, id := range userIDs {
		if _, ok := s.users[id]; !ok {
			return ErrNotFound
		}
	}
	for _, id := range userIDs {
		s.users[id].OrganizationID = &orgID
	}
	return nil
}
