package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invitation grants acceptance-time membership to one group for one
// email. The token is a random UUID, single-use by convention but
// idempotent in practice: re-accepting an accepted invitation succeeds
// without creating a duplicate membership.
type Invitation struct {
	ID        uuid.UUID  `json:"id"`
	GroupID   uuid.UUID  `json:"groupId"`
	Email     string     `json:"email"`
	Token     uuid.UUID  `json:"token"`
	Accepted  bool       `json:"accepted"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
