package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender choices
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Role flags. Admin implies staff access everywhere; there is no second boolean.
const (
	RoleStandard = "STANDARD"
	RoleAdmin    = "ADMIN"
)

// Account lifecycle states. PENDING accounts were registered but never activated,
// DELETED accounts were soft-deleted. The two must not be conflated.
const (
	StatusPending = "PENDING"
	StatusActive  = "ACTIVE"
	StatusDeleted = "DELETED"
)

type User struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	Password       string     `json:"-" gorm:"not null"`
	FirstName      string     `json:"first_name" gorm:"size:100"`
	LastName       string     `json:"last_name" gorm:"size:100"`
	Gender         string     `json:"gender" gorm:"size:1;not null"`
	Avatar         string     `json:"avatar"`
	Role           string     `json:"role" gorm:"size:20;default:'STANDARD'"`
	Status         string     `json:"status" gorm:"size:20;default:'PENDING'"`
	OrganizationID *uuid.UUID `json:"organization_id" gorm:"type:uuid"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization Organization `json:"-" gorm:"foreignKey:OrganizationID"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive reports whether the account is activated and not soft-deleted.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
