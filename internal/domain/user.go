package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account without persistence concerns. The password digest
// never leaves the infrastructure layer. A user provisioned through an
// invitation has no digest and cannot log in directly.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	AvatarID  *string   `json:"avatarId,omitempty"`
	Pseudo    *string   `json:"pseudo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
