package domain

import "github.com/google/uuid"

// GroupSet is the set of group memberships a credential asserts,
// compared by membership rather than string pattern matching.
type GroupSet map[uuid.UUID]struct{}

// NewGroupSet builds a set from a slice of group ids.
func NewGroupSet(ids []uuid.UUID) GroupSet {
	set := make(GroupSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether the set holds id.
func (s GroupSet) Contains(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the set as a slice, order unspecified.
func (s GroupSet) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// Requester is the immutable authorization context derived from a
// verified capability token. It is passed explicitly into usecases;
// there is no ambient current-user lookup. The group set is frozen at
// token issuance: membership gained afterwards is invisible until a
// fresh token is presented.
type Requester struct {
	UserID   uuid.UUID
	IsAdmin  bool
	GroupIDs GroupSet
}

// Member reports whether the requester's token asserts membership in
// the given group.
func (r Requester) Member(groupID uuid.UUID) bool {
	return r.GroupIDs.Contains(groupID)
}
