package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"orgaccount-backend/shared/database/models"
	"orgaccount-backend/shared/database/models/auth"
	"orgaccount-backend/shared/utils/query"
)

// GormAccountRepository is the postgres-backed AccountRepository.
type GormAccountRepository struct {
	db *gorm.DB
}

func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateEmail
	default:
		return err
	}
}

func (r *GormAccountRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *GormAccountRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *GormAccountRepository) List(ctx context.Context, params query.FilterParams) ([]models.User, int64, error) {
	allowedFilters := map[string]string{
		"status":          "status",
		"role":            "role",
		"organization_id": "organization_id",
	}
	allowedSortFields := map[string]string{
		"email":      "email",
		"first_name": "first_name",
		"last_name":  "last_name",
		"status":     "status",
		"created_at": "created_at",
	}
	searchFields := []string{"first_name", "last_name", "email"}

	baseQuery := r.db.WithContext(ctx).Model(&models.User{})
	filtered := query.ApplyFilters(baseQuery, params.Filters, allowedFilters)
	searched := query.ApplySearch(filtered, params.Search, searchFields)

	var total int64
	if err := searched.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	final := query.ApplySort(searched, params.Sort, allowedSortFields)
	final = query.ApplyPagination(final, params.Page, params.Limit)

	var users []models.User
	if err := final.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *GormAccountRepository) Update(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Model(user).Select(
		"email", "first_name", "last_name", "gender", "avatar", "organization_id",
	).Updates(user).Error)
}

func (r *GormAccountRepository) UpdatePassword(ctx context.Context, id uuid.UUID, digest string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", digest)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormAccountRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormAccountRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", gorm.Expr("NOW()"))
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GormTokenRepository is the postgres-backed TokenRepository.
type GormTokenRepository struct {
	db *gorm.DB
}

func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

func (r *GormTokenRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, candidate string) (string, error) {
	token := auth.AuthToken{
		ID:     uuid.New(),
		Key:    candidate,
		UserID: userID,
	}
	// FirstOrCreate runs inside a transaction; a concurrent insert for the
	// same user loses on the unique user_id index, in which case the winner
	// is re-read so both callers see one surviving key.
	err := r.db.WithContext(ctx).
		Where(&auth.AuthToken{UserID: userID}).
		FirstOrCreate(&token).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = r.db.WithContext(ctx).First(&token, "user_id = ?", userID).Error
	}
	if err != nil {
		return "", translateError(err)
	}
	return token.Key, nil
}

func (r *GormTokenRepository) FindUserByKey(ctx context.Context, key string) (*models.User, error) {
	var token auth.AuthToken
	if err := r.db.WithContext(ctx).First(&token, "key = ?", key).Error; err != nil {
		return nil, translateError(err)
	}
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", token.UserID).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// GormOrganizationRepository is the postgres-backed OrganizationRepository.
type GormOrganizationRepository struct {
	db *gorm.DB
}

func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

func (r *GormOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	return translateError(r.db.WithContext(ctx).Create(org).Error)
}

func (r *GormOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &org, nil
}

func (r *GormOrganizationRepository) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "name = ?", name).Error; err != nil {
		return nil, translateError(err)
	}
	return &org, nil
}

func (r *GormOrganizationRepository) ListMembers(ctx context.Context, orgID uuid.UUID, page, limit int) ([]models.User, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.User{}).Where("organization_id = ?", orgID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := base.Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *GormOrganizationRepository) AddMembers(ctx context.Context, orgID uuid.UUID, userIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var org models.Organization
		if err := tx.First(&org, "id = ?", orgID).Error; err != nil {
			return translateError(err)
		}

		var count int64
		if err := tx.Model(&models.User{}).Where("id IN ?", userIDs).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(userIDs)) {
			return ErrNotFound
		}

		// Single update keeps the roster union atomic under concurrent calls.
		return tx.Model(&models.User{}).
			Where("id IN ?", userIDs).
			Update("organization_id", orgID).Error
	})
}
