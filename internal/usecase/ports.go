package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

// UserRepository defines persistence for accounts. The password digest
// stays behind this boundary: domain.User never carries it.
type UserRepository interface {
	// Create persists a new user. A nil digest provisions an account
	// that cannot log in directly (invitation-created users). A taken
	// email yields domain.DuplicateError.
	Create(ctx context.Context, user domain.User, digest *string) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	// Credential returns the user and its digest for login. A user with
	// no digest returns a nil digest, not an error.
	Credential(ctx context.Context, email string) (domain.User, *string, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, avatarID, pseudo *string) (domain.User, error)
}

// GroupRepository defines persistence for groups.
type GroupRepository interface {
	Create(ctx context.Context, group domain.Group) (domain.Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Group, error)
	ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.Group, error)
	Update(ctx context.Context, group domain.Group) (domain.Group, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MembershipRepository is the durable (user, group) relation.
type MembershipRepository interface {
	// Join is an idempotent upsert: joining twice, concurrently or not,
	// leaves exactly one row and never errors.
	Join(ctx context.Context, userID, groupID uuid.UUID) error
	Exists(ctx context.Context, userID, groupID uuid.UUID) (bool, error)
	GroupIDsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GroupsOf(ctx context.Context, userID uuid.UUID) ([]domain.Group, error)
	MembersOf(ctx context.Context, groupID uuid.UUID) ([]domain.User, error)
}

// InvitationRepository defines persistence for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv domain.Invitation) (domain.Invitation, error)
	GetByToken(ctx context.Context, token uuid.UUID) (domain.Invitation, error)
	MarkAccepted(ctx context.Context, id, userID uuid.UUID) error
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Invitation, error)
}

// WishRepository defines persistence for wishes. Reserve and Release
// are atomic conditional updates: the row transition happens in one
// statement or not at all.
type WishRepository interface {
	Create(ctx context.Context, wish domain.Wish) (domain.Wish, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Wish, error)
	// Reserve sets the reserver only while the wish is unreserved.
	// Losing the race yields domain.ConflictError.
	Reserve(ctx context.Context, wishID, userID uuid.UUID) error
	// Release clears the reserver only when userID holds it; anything
	// else yields domain.BusinessRuleError.
	Release(ctx context.Context, wishID, userID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Wish, error)
	ListByAuthor(ctx context.Context, groupID, authorID uuid.UUID) ([]domain.Wish, error)
}

// TokenIssuer issues capability tokens. Membership data is supplied by
// the caller; the issuer never reads the membership store.
type TokenIssuer interface {
	Issue(subject uuid.UUID, isAdmin bool, groupIDs []uuid.UUID, now time.Time) (string, error)
}

// PasswordHasher is the opaque credential-digest collaborator.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// MetadataGateway resolves a product URL into best-effort metadata.
type MetadataGateway interface {
	Extract(ctx context.Context, rawURL string) (domain.ProductMetadata, error)
}

// EventPublisher fans a group event out to realtime subscribers.
// Publishing is best-effort; mutations never fail on publish errors.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.GroupEvent) error
}
