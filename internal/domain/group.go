package domain

import (
	"time"

	"github.com/google/uuid"
)

// GroupType categorizes the occasion a group is organized around.
type GroupType string

const (
	GroupTypeChristmas GroupType = "christmas"
	GroupTypeBirthday  GroupType = "birthday"
	GroupTypeWedding   GroupType = "wedding"
	GroupTypeOther     GroupType = "other"
)

// Valid reports whether t is one of the known group types.
func (t GroupType) Valid() bool {
	switch t {
	case GroupTypeChristmas, GroupTypeBirthday, GroupTypeWedding, GroupTypeOther:
		return true
	}
	return false
}

// Group is a gift-exchange circle owned by exactly one admin. The owner
// auto-joins at creation; ownership does not transfer.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      GroupType `json:"type"`
	AdminID   uuid.UUID `json:"adminId"`
	CreatedAt time.Time `json:"createdAt"`
}
