package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

// GroupResult is a group plus, when the operation changed the caller's
// membership, a re-issued capability token reflecting it.
type GroupResult struct {
	Group domain.Group `json:"group"`
	Token string       `json:"token,omitempty"`
}

type GroupUsecase struct {
	groups      GroupRepository
	memberships MembershipRepository
	tokens      TokenIssuer
}

func NewGroupUsecase(
	groups GroupRepository,
	memberships MembershipRepository,
	tokens TokenIssuer,
) *GroupUsecase {
	return &GroupUsecase{
		groups:      groups,
		memberships: memberships,
		tokens:      tokens,
	}
}

// Create makes a group owned by the requesting admin. The owner joins
// immediately, and the response carries a fresh token with the enlarged
// group set so the new membership is usable without re-login.
func (uc *GroupUsecase) Create(ctx context.Context, req domain.Requester, name string, groupType domain.GroupType) (GroupResult, error) {
	if strings.TrimSpace(name) == "" {
		return GroupResult{}, domain.ValidationError{Field: "name", Reason: "required"}
	}
	if !groupType.Valid() {
		return GroupResult{}, domain.ValidationError{Field: "type", Reason: "unknown group type"}
	}

	group, err := uc.groups.Create(ctx, domain.Group{
		Name:    name,
		Type:    groupType,
		AdminID: req.UserID,
	})
	if err != nil {
		return GroupResult{}, err
	}

	if err := uc.memberships.Join(ctx, req.UserID, group.ID); err != nil {
		return GroupResult{}, errors.Wrap(err, "GroupUsecase.Create: owner auto-join failed")
	}

	groupIDs, err := uc.memberships.GroupIDsOf(ctx, req.UserID)
	if err != nil {
		return GroupResult{}, errors.Wrap(err, "GroupUsecase.Create: membership lookup failed")
	}

	signed, err := uc.tokens.Issue(req.UserID, req.IsAdmin, groupIDs, time.Now())
	if err != nil {
		return GroupResult{}, errors.Wrap(err, "GroupUsecase.Create: token issuance failed")
	}

	return GroupResult{Group: group, Token: signed}, nil
}

// ListOwned returns the groups administered by the requester.
func (uc *GroupUsecase) ListOwned(ctx context.Context, req domain.Requester) ([]domain.Group, error) {
	return uc.groups.ListByAdmin(ctx, req.UserID)
}

// ListJoined returns the groups the requester is a member of,
// re-queried from the store rather than the token.
func (uc *GroupUsecase) ListJoined(ctx context.Context, req domain.Requester) ([]domain.Group, error) {
	return uc.memberships.GroupsOf(ctx, req.UserID)
}

// Update renames or retypes a group. Owner only.
func (uc *GroupUsecase) Update(ctx context.Context, req domain.Requester, groupID uuid.UUID, name string, groupType domain.GroupType) (domain.Group, error) {
	group, err := uc.groups.GetByID(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if group.AdminID != req.UserID {
		return domain.Group{}, domain.ForbiddenError{Reason: "only the group owner may modify it"}
	}
	if strings.TrimSpace(name) == "" {
		return domain.Group{}, domain.ValidationError{Field: "name", Reason: "required"}
	}
	if !groupType.Valid() {
		return domain.Group{}, domain.ValidationError{Field: "type", Reason: "unknown group type"}
	}

	group.Name = name
	group.Type = groupType
	return uc.groups.Update(ctx, group)
}

// Delete removes a group. Owner only.
func (uc *GroupUsecase) Delete(ctx context.Context, req domain.Requester, groupID uuid.UUID) error {
	group, err := uc.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.AdminID != req.UserID {
		return domain.ForbiddenError{Reason: "only the group owner may delete it"}
	}
	return uc.groups.Delete(ctx, groupID)
}

// Roster lists the members of a group the requester belongs to.
func (uc *GroupUsecase) Roster(ctx context.Context, req domain.Requester, groupID uuid.UUID) ([]domain.User, error) {
	if _, err := uc.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return uc.memberships.MembersOf(ctx, groupID)
}
