package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

type invitationFixture struct {
	uc          *InvitationUsecase
	users       *fakeUserRepo
	groups      *fakeGroupRepo
	memberships *fakeMembershipRepo
	issuer      *fakeIssuer
}

func newInvitationFixture() invitationFixture {
	users := newFakeUserRepo()
	groups := newFakeGroupRepo()
	memberships := newFakeMembershipRepo(groups, users)
	issuer := &fakeIssuer{}
	uc := NewInvitationUsecase(
		newFakeInvitationRepo(),
		groups, users, memberships, issuer,
		"https://app.example.com/invite/",
	)
	return invitationFixture{uc: uc, users: users, groups: groups, memberships: memberships, issuer: issuer}
}

func (f invitationFixture) ownedGroup(t *testing.T, adminID uuid.UUID) domain.Group {
	t.Helper()
	group, err := f.groups.Create(context.Background(), domain.Group{
		Name:    "famille",
		Type:    domain.GroupTypeChristmas,
		AdminID: adminID,
	})
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}
	return group
}

func TestInvitationCreateRequiresOwnership(t *testing.T) {
	f := newInvitationFixture()
	owner := uuid.New()
	otherAdmin := uuid.New()
	group := f.ownedGroup(t, owner)

	// Admin flag alone is not enough: the requester must own the group.
	req := domain.Requester{UserID: otherAdmin, IsAdmin: true}
	if _, err := f.uc.Create(context.Background(), req, group.ID, "guest@example.com"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}

	res, err := f.uc.Create(context.Background(), domain.Requester{UserID: owner, IsAdmin: true}, group.ID, "guest@example.com")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.HasPrefix(res.Link, "https://app.example.com/invite/") {
		t.Fatalf("unexpected link %q", res.Link)
	}
	if !strings.HasSuffix(res.Link, res.Invitation.Token.String()) {
		t.Fatalf("link must end with the invitation token")
	}
	if res.Invitation.Accepted {
		t.Fatalf("new invitation must be pending")
	}
}

func TestInvitationCreateUnknownGroup(t *testing.T) {
	f := newInvitationFixture()
	req := domain.Requester{UserID: uuid.New(), IsAdmin: true}
	if _, err := f.uc.Create(context.Background(), req, uuid.New(), "guest@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestInvitationAcceptProvisionsUserAndIssuesToken(t *testing.T) {
	f := newInvitationFixture()
	owner := uuid.New()
	group := f.ownedGroup(t, owner)

	res, err := f.uc.Create(context.Background(), domain.Requester{UserID: owner, IsAdmin: true}, group.ID, "guest@example.com")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	accepted, err := f.uc.Accept(context.Background(), res.Invitation.Token)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if !accepted.Invitation.Accepted {
		t.Fatalf("invitation must be accepted")
	}
	if accepted.Token == "" {
		t.Fatalf("acceptance must return a fresh capability token")
	}

	user, err := f.users.GetByEmail(context.Background(), "guest@example.com")
	if err != nil {
		t.Fatalf("provisioned user missing: %v", err)
	}
	if user.IsAdmin {
		t.Fatalf("provisioned user must not be admin")
	}
	if _, digest, _ := f.users.Credential(context.Background(), user.Email); digest != nil {
		t.Fatalf("provisioned user must have no password digest")
	}

	joined, err := f.memberships.Exists(context.Background(), user.ID, group.ID)
	if err != nil || !joined {
		t.Fatalf("expected membership row, got joined=%t err=%v", joined, err)
	}
	if !f.issuer.lastGroupSet().Contains(group.ID) {
		t.Fatalf("fresh token must embed the joined group")
	}
}

func TestInvitationAcceptIsIdempotent(t *testing.T) {
	f := newInvitationFixture()
	owner := uuid.New()
	group := f.ownedGroup(t, owner)

	res, err := f.uc.Create(context.Background(), domain.Requester{UserID: owner, IsAdmin: true}, group.ID, "guest@example.com")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.uc.Accept(context.Background(), res.Invitation.Token); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
	second, err := f.uc.Accept(context.Background(), res.Invitation.Token)
	if err != nil {
		t.Fatalf("second accept must not error: %v", err)
	}
	if second.Token == "" {
		t.Fatalf("second accept must still return a token")
	}

	user, err := f.users.GetByEmail(context.Background(), "guest@example.com")
	if err != nil {
		t.Fatalf("user missing: %v", err)
	}
	groupIDs, err := f.memberships.GroupIDsOf(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("membership lookup failed: %v", err)
	}
	if len(groupIDs) != 1 {
		t.Fatalf("expected exactly one membership row, got %d", len(groupIDs))
	}
}

func TestInvitationAcceptEmbedsWholeGroupSet(t *testing.T) {
	f := newInvitationFixture()
	owner := uuid.New()
	groupA := f.ownedGroup(t, owner)
	groupB := f.ownedGroup(t, owner)

	// The invitee already belongs to groupA through an earlier accept.
	resA, err := f.uc.Create(context.Background(), domain.Requester{UserID: owner, IsAdmin: true}, groupA.ID, "guest@example.com")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.uc.Accept(context.Background(), resA.Invitation.Token); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	resB, err := f.uc.Create(context.Background(), domain.Requester{UserID: owner, IsAdmin: true}, groupB.ID, "guest@example.com")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.uc.Accept(context.Background(), resB.Invitation.Token); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	set := f.issuer.lastGroupSet()
	if !set.Contains(groupA.ID) || !set.Contains(groupB.ID) {
		t.Fatalf("token must carry the complete recomputed group set")
	}
}

func TestInvitationAcceptUnknownToken(t *testing.T) {
	f := newInvitationFixture()
	if _, err := f.uc.Accept(context.Background(), uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found for unknown token, got %v", err)
	}
}

func TestInvitationListOwnerOnly(t *testing.T) {
	f := newInvitationFixture()
	owner := uuid.New()
	group := f.ownedGroup(t, owner)

	if _, err := f.uc.Create(context.Background(), domain.Requester{UserID: owner, IsAdmin: true}, group.ID, "guest@example.com"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.uc.List(context.Background(), domain.Requester{UserID: uuid.New(), IsAdmin: true}, group.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner listing, got %v", err)
	}

	invs, err := f.uc.List(context.Background(), domain.Requester{UserID: owner, IsAdmin: true}, group.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(invs) != 1 {
		t.Fatalf("expected 1 invitation, got %d", len(invs))
	}
}
