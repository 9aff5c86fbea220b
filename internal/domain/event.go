package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event types published on a group's realtime channel.
const (
	EventWishCreated  = "wish.created"
	EventWishReserved = "wish.reserved"
	EventWishReleased = "wish.released"
	EventWishDeleted  = "wish.deleted"
)

// GroupEvent is broadcast to members of a group when a wish changes.
// It intentionally never carries the reserver's identity: the wish
// author receives the same payload as everyone else.
type GroupEvent struct {
	Type     string    `json:"type"`
	GroupID  uuid.UUID `json:"groupId"`
	WishID   uuid.UUID `json:"wishId"`
	AuthorID uuid.UUID `json:"userId"`
	GiftName string    `json:"giftName,omitempty"`
	At       time.Time `json:"at"`
}
