package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string     `json:"name" gorm:"size:255;not null"`
	Location  string     `json:"location" gorm:"size:255"`
	Phone     string     `json:"phone" gorm:"size:20"`
	OwnerID   *uuid.UUID `json:"owner_id" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
