package database

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"orgaccount-backend/shared/config"
	"orgaccount-backend/shared/database/models"
	utils "orgaccount-backend/shared/utils/auth"
)

// SeedDatabase creates the bootstrap records every deployment needs: the
// default organization new accounts are attached to, and the super admin.
// Safe to run repeatedly.
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	org, err := EnsureDefaultOrganization()
	if err != nil {
		return err
	}

	if err := CreateSuperAdminFromConfig(org); err != nil {
		return err
	}

	log.Println("✅ Database seed data is up to date")
	return nil
}

// EnsureDefaultOrganization returns the default organization, creating it
// on first run.
func EnsureDefaultOrganization() (*models.Organization, error) {
	cfg := config.GetConfig()

	var org models.Organization
	err := DB.Where("name = ?", cfg.DefaultOrganizationName).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	org = models.Organization{Name: cfg.DefaultOrganizationName}
	if err := DB.Create(&org).Error; err != nil {
		return nil, err
	}

	log.Printf("✅ Default organization created: %s", org.Name)
	return &org, nil
}

// CreateSuperAdminFromConfig creates the admin account declared in the
// environment. The account is born active; no activation email is sent.
func CreateSuperAdminFromConfig(org *models.Organization) error {
	cfg := config.GetConfig()

	var existing models.User
	err := DB.Where("email = ?", utils.NormalizeEmail(cfg.SuperAdminEmail)).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	digest, err := utils.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:          utils.NormalizeEmail(cfg.SuperAdminEmail),
		Password:       digest,
		FirstName:      "Super",
		LastName:       "Admin",
		Gender:         models.GenderMale,
		Role:           models.RoleAdmin,
		Status:         models.StatusActive,
		OrganizationID: &org.ID,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Super admin created: %s", admin.Email)
	return nil
}
