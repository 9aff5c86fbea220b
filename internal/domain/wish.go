package domain

import (
	"time"

	"github.com/google/uuid"
)

// Field limits enforced before any write.
const (
	WishNameMaxLen        = 255
	WishDescriptionMaxLen = 10000
	WishURLMaxLen         = 2048
	WishPriceMaxLen       = 100
)

// Wish is a gift wish posted by a group member. ReservedBy is nil while
// the wish is unreserved; at most one non-author member holds it.
type Wish struct {
	ID          uuid.UUID  `json:"id"`
	GroupID     uuid.UUID  `json:"groupId"`
	AuthorID    uuid.UUID  `json:"userId"`
	GiftName    string     `json:"giftName"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Price       string     `json:"price,omitempty"`
	ReservedBy  *uuid.UUID `json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// WishView is a wish as exposed to a particular caller. The reserver's
// identity is blanked when the caller is the wish's author; Reserved
// still tells the author that somebody claimed it.
type WishView struct {
	Wish
	Reserved   bool       `json:"reserved"`
	ReservedBy *uuid.UUID `json:"reservedBy,omitempty"`
}

// ViewFor renders the wish for the given caller, applying the
// owner-blind visibility rule.
func (w Wish) ViewFor(caller uuid.UUID) WishView {
	view := WishView{
		Wish:     w,
		Reserved: w.ReservedBy != nil,
	}
	if caller != w.AuthorID {
		view.ReservedBy = w.ReservedBy
	}
	return view
}
