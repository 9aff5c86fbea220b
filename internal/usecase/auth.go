package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

// AuthResult carries the outcome of registration or login: the account
// and a capability token embedding its current group set.
type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type AuthUsecase struct {
	users       UserRepository
	memberships MembershipRepository
	hasher      PasswordHasher
	tokens      TokenIssuer
}

func NewAuthUsecase(
	users UserRepository,
	memberships MembershipRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
) *AuthUsecase {
	return &AuthUsecase{
		users:       users,
		memberships: memberships,
		hasher:      hasher,
		tokens:      tokens,
	}
}

// Register creates an admin account. The email is stored as given,
// compared case-sensitively.
func (uc *AuthUsecase) Register(ctx context.Context, email, plain string) (AuthResult, error) {
	if strings.TrimSpace(email) == "" {
		return AuthResult{}, domain.ValidationError{Field: "email", Reason: "required"}
	}
	if plain == "" {
		return AuthResult{}, domain.ValidationError{Field: "password", Reason: "required"}
	}

	digest, err := uc.hasher.Hash(plain)
	if err != nil {
		return AuthResult{}, errors.Wrap(err, "AuthUsecase.Register: hashing failed")
	}

	user, err := uc.users.Create(ctx, domain.User{
		Email:   email,
		IsAdmin: true,
	}, &digest)
	if err != nil {
		return AuthResult{}, err
	}

	signed, err := uc.tokens.Issue(user.ID, user.IsAdmin, nil, time.Now())
	if err != nil {
		return AuthResult{}, errors.Wrap(err, "AuthUsecase.Register: token issuance failed")
	}

	return AuthResult{User: user, Token: signed}, nil
}

// Login verifies the password digest and issues a token embedding the
// user's full current group set. Users provisioned via invitation have
// no digest and cannot log in until one is set through a future path.
func (uc *AuthUsecase) Login(ctx context.Context, email, plain string) (AuthResult, error) {
	user, digest, err := uc.users.Credential(ctx, email)
	if err != nil {
		return AuthResult{}, err
	}
	if digest == nil || !uc.hasher.Verify(plain, *digest) {
		return AuthResult{}, domain.UnauthenticatedError{Reason: "invalid credentials"}
	}

	groupIDs, err := uc.memberships.GroupIDsOf(ctx, user.ID)
	if err != nil {
		return AuthResult{}, errors.Wrap(err, "AuthUsecase.Login: membership lookup failed")
	}

	signed, err := uc.tokens.Issue(user.ID, user.IsAdmin, groupIDs, time.Now())
	if err != nil {
		return AuthResult{}, errors.Wrap(err, "AuthUsecase.Login: token issuance failed")
	}

	return AuthResult{User: user, Token: signed}, nil
}
