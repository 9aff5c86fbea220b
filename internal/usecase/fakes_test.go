package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

// In-memory fakes backing the usecase tests. They reproduce the store
// contracts the real repositories provide: unique email, idempotent
// membership upsert, conditional reserve/release.

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]domain.User
	digests map[uuid.UUID]*string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   map[uuid.UUID]domain.User{},
		digests: map[uuid.UUID]*string{},
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user domain.User, digest *string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.User{}, domain.DuplicateError{Resource: "user"}
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	r.digests[user.ID] = digest
	return user, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.NotFoundError{Resource: "user"}
}

func (r *fakeUserRepo) Credential(ctx context.Context, email string) (domain.User, *string, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return u, r.digests[u.ID], nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, avatarID, pseudo *string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if avatarID != nil {
		u.AvatarID = avatarID
	}
	if pseudo != nil {
		u.Pseudo = pseudo
	}
	r.users[id] = u
	return u, nil
}

type fakeGroupRepo struct {
	mu     sync.Mutex
	groups map[uuid.UUID]domain.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[uuid.UUID]domain.Group{}}
}

func (r *fakeGroupRepo) Create(ctx context.Context, group domain.Group) (domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group.ID = uuid.New()
	group.CreatedAt = time.Now()
	r.groups[group.ID] = group
	return group, nil
}

func (r *fakeGroupRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return domain.Group{}, domain.NotFoundError{Resource: "group"}
	}
	return g, nil
}

func (r *fakeGroupRepo) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Group
	for _, g := range r.groups {
		if g.AdminID == adminID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) Update(ctx context.Context, group domain.Group) (domain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[group.ID]; !ok {
		return domain.Group{}, domain.NotFoundError{Resource: "group"}
	}
	r.groups[group.ID] = group
	return group, nil
}

func (r *fakeGroupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[id]; !ok {
		return domain.NotFoundError{Resource: "group"}
	}
	delete(r.groups, id)
	return nil
}

type fakeMembershipRepo struct {
	mu     sync.Mutex
	pairs  map[uuid.UUID]map[uuid.UUID]bool // user -> group set
	groups *fakeGroupRepo
	users  *fakeUserRepo
}

func newFakeMembershipRepo(groups *fakeGroupRepo, users *fakeUserRepo) *fakeMembershipRepo {
	return &fakeMembershipRepo{
		pairs:  map[uuid.UUID]map[uuid.UUID]bool{},
		groups: groups,
		users:  users,
	}
}

func (r *fakeMembershipRepo) Join(ctx context.Context, userID, groupID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pairs[userID] == nil {
		r.pairs[userID] = map[uuid.UUID]bool{}
	}
	r.pairs[userID][groupID] = true
	return nil
}

func (r *fakeMembershipRepo) Exists(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pairs[userID][groupID], nil
}

func (r *fakeMembershipRepo) GroupIDsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []uuid.UUID
	for gid := range r.pairs[userID] {
		out = append(out, gid)
	}
	return out, nil
}

func (r *fakeMembershipRepo) GroupsOf(ctx context.Context, userID uuid.UUID) ([]domain.Group, error) {
	ids, _ := r.GroupIDsOf(ctx, userID)
	var out []domain.Group
	for _, id := range ids {
		g, err := r.groups.GetByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *fakeMembershipRepo) MembersOf(ctx context.Context, groupID uuid.UUID) ([]domain.User, error) {
	r.mu.Lock()
	members := []uuid.UUID{}
	for uid, groups := range r.pairs {
		if groups[groupID] {
			members = append(members, uid)
		}
	}
	r.mu.Unlock()

	var out []domain.User
	for _, uid := range members {
		u, err := r.users.GetByID(ctx, uid)
		if err != nil {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[uuid.UUID]domain.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: map[uuid.UUID]domain.Invitation{}}
}

func (r *fakeInvitationRepo) Create(ctx context.Context, inv domain.Invitation) (domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv.ID = uuid.New()
	inv.CreatedAt = time.Now()
	r.invitations[inv.ID] = inv
	return inv, nil
}

func (r *fakeInvitationRepo) GetByToken(ctx context.Context, token uuid.UUID) (domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return domain.Invitation{}, domain.NotFoundError{Resource: "invitation"}
}

func (r *fakeInvitationRepo) MarkAccepted(ctx context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return domain.NotFoundError{Resource: "invitation"}
	}
	inv.Accepted = true
	inv.UserID = &userID
	r.invitations[id] = inv
	return nil
}

func (r *fakeInvitationRepo) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Invitation
	for _, inv := range r.invitations {
		if inv.GroupID == groupID {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeWishRepo struct {
	mu     sync.Mutex
	wishes map[uuid.UUID]domain.Wish
}

func newFakeWishRepo() *fakeWishRepo {
	return &fakeWishRepo{wishes: map[uuid.UUID]domain.Wish{}}
}

func (r *fakeWishRepo) Create(ctx context.Context, wish domain.Wish) (domain.Wish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wish.ID = uuid.New()
	wish.CreatedAt = time.Now()
	r.wishes[wish.ID] = wish
	return wish, nil
}

func (r *fakeWishRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Wish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wishes[id]
	if !ok {
		return domain.Wish{}, domain.NotFoundError{Resource: "wish"}
	}
	return w, nil
}

func (r *fakeWishRepo) Reserve(ctx context.Context, wishID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wishes[wishID]
	if !ok {
		return domain.NotFoundError{Resource: "wish"}
	}
	if w.ReservedBy != nil {
		return domain.ConflictError{Reason: "wish already reserved"}
	}
	w.ReservedBy = &userID
	r.wishes[wishID] = w
	return nil
}

func (r *fakeWishRepo) Release(ctx context.Context, wishID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wishes[wishID]
	if !ok {
		return domain.NotFoundError{Resource: "wish"}
	}
	if w.ReservedBy == nil || *w.ReservedBy != userID {
		return domain.BusinessRuleError{Rule: "you have not reserved this wish"}
	}
	w.ReservedBy = nil
	r.wishes[wishID] = w
	return nil
}

func (r *fakeWishRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wishes[id]; !ok {
		return domain.NotFoundError{Resource: "wish"}
	}
	delete(r.wishes, id)
	return nil
}

func (r *fakeWishRepo) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Wish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Wish
	for _, w := range r.wishes {
		if w.GroupID == groupID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWishRepo) ListByAuthor(ctx context.Context, groupID, authorID uuid.UUID) ([]domain.Wish, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Wish
	for _, w := range r.wishes {
		if w.GroupID == groupID && w.AuthorID == authorID {
			out = append(out, w)
		}
	}
	return out, nil
}

// fakeIssuer records every issuance so tests can assert on the group
// set embedded in the latest token.
type fakeIssuer struct {
	mu         sync.Mutex
	lastGroups []uuid.UUID
	issued     int
}

func (f *fakeIssuer) Issue(subject uuid.UUID, isAdmin bool, groupIDs []uuid.UUID, now time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastGroups = append([]uuid.UUID(nil), groupIDs...)
	f.issued++
	groups := make([]string, len(groupIDs))
	for i, id := range groupIDs {
		groups[i] = id.String()
	}
	return fmt.Sprintf("token(%s admin=%t groups=%s)", subject, isAdmin, strings.Join(groups, ",")), nil
}

func (f *fakeIssuer) lastGroupSet() domain.GroupSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.NewGroupSet(f.lastGroups)
}

type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "digest:" + plain, nil }
func (fakeHasher) Verify(plain, digest string) bool  { return digest == "digest:"+plain }

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.GroupEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event domain.GroupEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}
