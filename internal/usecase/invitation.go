package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

// InvitationResult is a created or accepted invitation. Link is the
// shareable acceptance URL on creation; Token is the fresh capability
// token for the accepting user.
type InvitationResult struct {
	Invitation domain.Invitation `json:"invitation"`
	Link       string            `json:"link,omitempty"`
	Token      string            `json:"token,omitempty"`
}

type InvitationUsecase struct {
	invitations InvitationRepository
	groups      GroupRepository
	users       UserRepository
	memberships MembershipRepository
	tokens      TokenIssuer
	baseURL     string
}

func NewInvitationUsecase(
	invitations InvitationRepository,
	groups GroupRepository,
	users UserRepository,
	memberships MembershipRepository,
	tokens TokenIssuer,
	baseURL string,
) *InvitationUsecase {
	return &InvitationUsecase{
		invitations: invitations,
		groups:      groups,
		users:       users,
		memberships: memberships,
		tokens:      tokens,
		baseURL:     baseURL,
	}
}

// Create stores a pending invitation for email into the group and
// returns the shareable link. The requesting admin must own the group:
// the check is against the group's owner record, not just the admin
// flag. Re-inviting the same email creates a second pending row;
// callers may dedupe.
func (uc *InvitationUsecase) Create(ctx context.Context, req domain.Requester, groupID uuid.UUID, email string) (InvitationResult, error) {
	if strings.TrimSpace(email) == "" {
		return InvitationResult{}, domain.ValidationError{Field: "email", Reason: "required"}
	}

	group, err := uc.groups.GetByID(ctx, groupID)
	if err != nil {
		return InvitationResult{}, err
	}
	if group.AdminID != req.UserID {
		return InvitationResult{}, domain.ForbiddenError{Reason: "only the group owner may invite"}
	}

	inv, err := uc.invitations.Create(ctx, domain.Invitation{
		GroupID: groupID,
		Email:   email,
		Token:   uuid.New(),
	})
	if err != nil {
		return InvitationResult{}, errors.Wrap(err, "InvitationUsecase.Create: store failed")
	}

	return InvitationResult{
		Invitation: inv,
		Link:       uc.baseURL + inv.Token.String(),
	}, nil
}

// List returns the invitations of a group the requesting admin owns.
func (uc *InvitationUsecase) List(ctx context.Context, req domain.Requester, groupID uuid.UUID) ([]domain.Invitation, error) {
	group, err := uc.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.AdminID != req.UserID {
		return nil, domain.ForbiddenError{Reason: "only the group owner may list invitations"}
	}
	return uc.invitations.ListByGroup(ctx, groupID)
}

// Accept resolves an invitation token into membership. The steps are
// each idempotent, so repeated clicks of an invitation link converge on
// the same state and never error:
//
//  1. provision a user for the invited email when none exists (no
//     password digest, not an admin);
//  2. upsert the (user, group) membership, backed by the store's unique
//     pair constraint;
//  3. mark the invitation accepted with the resolved user;
//  4. recompute the user's complete group set and issue a fresh
//     capability token embedding it.
//
// The returned token is how the membership change becomes visible to
// the client without a separate login.
func (uc *InvitationUsecase) Accept(ctx context.Context, invToken uuid.UUID) (InvitationResult, error) {
	inv, err := uc.invitations.GetByToken(ctx, invToken)
	if err != nil {
		return InvitationResult{}, err
	}

	user, err := uc.users.GetByEmail(ctx, inv.Email)
	if errors.Is(err, domain.ErrNotFound) {
		user, err = uc.users.Create(ctx, domain.User{
			Email:   inv.Email,
			IsAdmin: false,
		}, nil)
		if errors.Is(err, domain.ErrDuplicate) {
			// Concurrent acceptance provisioned it first.
			user, err = uc.users.GetByEmail(ctx, inv.Email)
		}
	}
	if err != nil {
		return InvitationResult{}, errors.Wrap(err, "InvitationUsecase.Accept: user provisioning failed")
	}

	if err := uc.memberships.Join(ctx, user.ID, inv.GroupID); err != nil {
		return InvitationResult{}, errors.Wrap(err, "InvitationUsecase.Accept: membership upsert failed")
	}

	if err := uc.invitations.MarkAccepted(ctx, inv.ID, user.ID); err != nil {
		return InvitationResult{}, errors.Wrap(err, "InvitationUsecase.Accept: marking accepted failed")
	}
	inv.Accepted = true
	inv.UserID = &user.ID

	groupIDs, err := uc.memberships.GroupIDsOf(ctx, user.ID)
	if err != nil {
		return InvitationResult{}, errors.Wrap(err, "InvitationUsecase.Accept: membership lookup failed")
	}

	signed, err := uc.tokens.Issue(user.ID, user.IsAdmin, groupIDs, time.Now())
	if err != nil {
		return InvitationResult{}, errors.Wrap(err, "InvitationUsecase.Accept: token issuance failed")
	}

	return InvitationResult{Invitation: inv, Token: signed}, nil
}
