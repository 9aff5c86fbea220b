package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

func newAuthFixture() (*AuthUsecase, *fakeUserRepo, *fakeMembershipRepo, *fakeIssuer) {
	users := newFakeUserRepo()
	groups := newFakeGroupRepo()
	memberships := newFakeMembershipRepo(groups, users)
	issuer := &fakeIssuer{}
	return NewAuthUsecase(users, memberships, fakeHasher{}, issuer), users, memberships, issuer
}

func TestAuthRegisterAndLogin(t *testing.T) {
	uc, _, _, _ := newAuthFixture()

	res, err := uc.Register(context.Background(), "admin@example.com", "s3cret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !res.User.IsAdmin {
		t.Fatalf("registration creates admins")
	}
	if res.Token == "" {
		t.Fatalf("registration must return a token")
	}

	login, err := uc.Login(context.Background(), "admin@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.User.ID != res.User.ID {
		t.Fatalf("login resolved the wrong user")
	}

	if _, err := uc.Login(context.Background(), "admin@example.com", "wrong"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for bad password, got %v", err)
	}
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	uc, _, _, _ := newAuthFixture()

	if _, err := uc.Register(context.Background(), "admin@example.com", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := uc.Register(context.Background(), "admin@example.com", "other"); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestAuthLoginWithoutDigest(t *testing.T) {
	uc, users, _, _ := newAuthFixture()

	// Invitation-provisioned account: no digest, cannot log in.
	if _, err := users.Create(context.Background(), domain.User{Email: "guest@example.com"}, nil); err != nil {
		t.Fatalf("provisioning failed: %v", err)
	}
	if _, err := uc.Login(context.Background(), "guest@example.com", "anything"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated for digest-less user, got %v", err)
	}
}

func TestAuthLoginEmbedsGroupSet(t *testing.T) {
	uc, _, memberships, issuer := newAuthFixture()

	res, err := uc.Register(context.Background(), "admin@example.com", "s3cret")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	groupA := uuid.New()
	groupB := uuid.New()
	if err := memberships.Join(context.Background(), res.User.ID, groupA); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if err := memberships.Join(context.Background(), res.User.ID, groupB); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	if _, err := uc.Login(context.Background(), "admin@example.com", "s3cret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	set := issuer.lastGroupSet()
	if !set.Contains(groupA) || !set.Contains(groupB) {
		t.Fatalf("login token must embed the full membership set")
	}
}
