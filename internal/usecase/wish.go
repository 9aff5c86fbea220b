package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

// WishInput is the free-text payload of a new wish.
type WishInput struct {
	GiftName    string `json:"giftName"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"imageUrl"`
	Price       string `json:"price"`
}

func (in WishInput) validate() error {
	if strings.TrimSpace(in.GiftName) == "" {
		return domain.ValidationError{Field: "giftName", Reason: "required"}
	}
	if len(in.GiftName) > domain.WishNameMaxLen {
		return domain.ValidationError{Field: "giftName", Reason: "too long"}
	}
	if len(in.Description) > domain.WishDescriptionMaxLen {
		return domain.ValidationError{Field: "description", Reason: "too long"}
	}
	if len(in.URL) > domain.WishURLMaxLen {
		return domain.ValidationError{Field: "url", Reason: "too long"}
	}
	if len(in.ImageURL) > domain.WishURLMaxLen {
		return domain.ValidationError{Field: "imageUrl", Reason: "too long"}
	}
	if len(in.Price) > domain.WishPriceMaxLen {
		return domain.ValidationError{Field: "price", Reason: "too long"}
	}
	return nil
}

// WishUsecase is the reservation engine: it owns the wish state machine
// and the owner-blind visibility rule. Group membership of the caller
// is asserted by the authorization gate before any method here runs;
// wish-level rules (authorship, reservation holder, group match) live
// here.
type WishUsecase struct {
	wishes      WishRepository
	memberships MembershipRepository
	events      EventPublisher
}

func NewWishUsecase(
	wishes WishRepository,
	memberships MembershipRepository,
	events EventPublisher,
) *WishUsecase {
	return &WishUsecase{
		wishes:      wishes,
		memberships: memberships,
		events:      events,
	}
}

// Create posts a new wish in the group. Field limits are checked before
// any write; a violation leaves nothing behind.
func (uc *WishUsecase) Create(ctx context.Context, req domain.Requester, groupID uuid.UUID, in WishInput) (domain.WishView, error) {
	if err := in.validate(); err != nil {
		return domain.WishView{}, err
	}

	wish, err := uc.wishes.Create(ctx, domain.Wish{
		GroupID:     groupID,
		AuthorID:    req.UserID,
		GiftName:    in.GiftName,
		Description: in.Description,
		URL:         in.URL,
		ImageURL:    in.ImageURL,
		Price:       in.Price,
	})
	if err != nil {
		return domain.WishView{}, err
	}

	uc.publish(ctx, domain.EventWishCreated, wish)
	return wish.ViewFor(req.UserID), nil
}

// Reserve claims the wish for the requester. The author can never
// reserve their own wish, and the first reservation wins: a concurrent
// second reserve receives a deterministic conflict, never a silent
// overwrite.
func (uc *WishUsecase) Reserve(ctx context.Context, req domain.Requester, groupID, wishID uuid.UUID) (domain.WishView, error) {
	wish, err := uc.wishes.GetByID(ctx, wishID)
	if err != nil {
		return domain.WishView{}, err
	}
	if wish.GroupID != groupID {
		return domain.WishView{}, domain.BusinessRuleError{Rule: "wish does not belong to this group"}
	}
	if wish.AuthorID == req.UserID {
		return domain.WishView{}, domain.BusinessRuleError{Rule: "you cannot reserve your own wish"}
	}

	if err := uc.wishes.Reserve(ctx, wishID, req.UserID); err != nil {
		return domain.WishView{}, err
	}
	wish.ReservedBy = &req.UserID

	uc.publish(ctx, domain.EventWishReserved, wish)
	return wish.ViewFor(req.UserID), nil
}

// Release returns the wish to unreserved. Only the current holder may
// release; releasing an unreserved wish or somebody else's reservation
// is a business-rule violation.
func (uc *WishUsecase) Release(ctx context.Context, req domain.Requester, groupID, wishID uuid.UUID) (domain.WishView, error) {
	wish, err := uc.wishes.GetByID(ctx, wishID)
	if err != nil {
		return domain.WishView{}, err
	}
	if wish.GroupID != groupID {
		return domain.WishView{}, domain.BusinessRuleError{Rule: "wish does not belong to this group"}
	}

	if err := uc.wishes.Release(ctx, wishID, req.UserID); err != nil {
		return domain.WishView{}, err
	}
	wish.ReservedBy = nil

	uc.publish(ctx, domain.EventWishReleased, wish)
	return wish.ViewFor(req.UserID), nil
}

// Delete removes the wish. Author only, regardless of reservation
// state: the reserver has no veto.
func (uc *WishUsecase) Delete(ctx context.Context, req domain.Requester, groupID, wishID uuid.UUID) error {
	wish, err := uc.wishes.GetByID(ctx, wishID)
	if err != nil {
		return err
	}
	if wish.GroupID != groupID {
		return domain.BusinessRuleError{Rule: "wish does not belong to this group"}
	}
	if wish.AuthorID != req.UserID {
		return domain.ForbiddenError{Reason: "only the author may delete a wish"}
	}

	if err := uc.wishes.Delete(ctx, wishID); err != nil {
		return err
	}

	uc.publish(ctx, domain.EventWishDeleted, wish)
	return nil
}

// ListForGroup returns all wishes of a group rendered for the caller:
// on the caller's own wishes the reserver identity is blanked.
func (uc *WishUsecase) ListForGroup(ctx context.Context, req domain.Requester, groupID uuid.UUID) ([]domain.WishView, error) {
	wishes, err := uc.wishes.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return renderAll(wishes, req.UserID), nil
}

// ListForAuthor returns one member's wishes in a group. The target must
// itself be a member.
func (uc *WishUsecase) ListForAuthor(ctx context.Context, req domain.Requester, groupID, authorID uuid.UUID) ([]domain.WishView, error) {
	isMember, err := uc.memberships.Exists(ctx, authorID, groupID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, domain.BusinessRuleError{Rule: "target user does not belong to this group"}
	}

	wishes, err := uc.wishes.ListByAuthor(ctx, groupID, authorID)
	if err != nil {
		return nil, err
	}
	return renderAll(wishes, req.UserID), nil
}

func renderAll(wishes []domain.Wish, caller uuid.UUID) []domain.WishView {
	views := make([]domain.WishView, 0, len(wishes))
	for _, w := range wishes {
		views = append(views, w.ViewFor(caller))
	}
	return views
}

// publish emits the owner-blind event for a wish change. Failures are
// logged and swallowed: the mutation already committed.
func (uc *WishUsecase) publish(ctx context.Context, eventType string, wish domain.Wish) {
	if uc.events == nil {
		return
	}
	err := uc.events.Publish(ctx, domain.GroupEvent{
		Type:     eventType,
		GroupID:  wish.GroupID,
		WishID:   wish.ID,
		AuthorID: wish.AuthorID,
		GiftName: wish.GiftName,
		At:       time.Now().UTC(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to publish group event",
			slog.String("type", eventType),
			slog.String("error", err.Error()),
		)
	}
}
