package auth

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken is an opaque bearer credential bound one-to-one to a user.
// It is created on first successful login and reused on every login after
// that; tokens are never rotated and never expire on their own.
type AuthToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Key       string    `json:"key" gorm:"size:64;uniqueIndex;not null"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}
