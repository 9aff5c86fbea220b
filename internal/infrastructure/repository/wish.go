package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wishgifthub/wishgifthub/internal/domain"
	"github.com/wishgifthub/wishgifthub/internal/infrastructure/database/models"
)

type WishRepository struct {
	db *gorm.DB
}

func NewWishRepository(db *gorm.DB) *WishRepository {
	return &WishRepository{db: db}
}

func wishToDomain(m models.Wish) domain.Wish {
	return domain.Wish{
		ID:          m.ID,
		GroupID:     m.GroupID,
		AuthorID:    m.UserID,
		GiftName:    m.GiftName,
		Description: m.Description,
		URL:         m.URL,
		ImageURL:    m.ImageURL,
		Price:       m.Price,
		ReservedBy:  m.ReservedByID,
		CreatedAt:   m.CDate,
	}
}

func (r *WishRepository) Create(ctx context.Context, wish domain.Wish) (domain.Wish, error) {
	model := models.Wish{
		UserID:      wish.AuthorID,
		GroupID:     wish.GroupID,
		GiftName:    wish.GiftName,
		Description: wish.Description,
		URL:         wish.URL,
		ImageURL:    wish.ImageURL,
		Price:       wish.Price,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Wish{}, err
	}
	return wishToDomain(model), nil
}

func (r *WishRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Wish, error) {
	var model models.Wish
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Wish{}, domain.NotFoundError{Resource: "wish"}
	}
	if err != nil {
		return domain.Wish{}, err
	}
	return wishToDomain(model), nil
}

// Reserve is the compare-and-set half of the reservation state machine:
// a single conditional UPDATE that only fires while the wish is
// unreserved. Of two concurrent reserves exactly one affects a row; the
// other reads zero rows and surfaces a deterministic conflict.
func (r *WishRepository) Reserve(ctx context.Context, wishID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Wish{}).
		Where("id = ? AND reserved_by_id IS NULL", wishID).
		Update("reserved_by_id", userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ConflictError{Reason: "wish already reserved"}
	}
	return nil
}

// Release clears the reservation only when userID holds it, in the
// same single-statement style as Reserve.
func (r *WishRepository) Release(ctx context.Context, wishID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Wish{}).
		Where("id = ? AND reserved_by_id = ?", wishID, userID).
		Update("reserved_by_id", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.BusinessRuleError{Rule: "you have not reserved this wish"}
	}
	return nil
}

func (r *WishRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Wish{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "wish"}
	}
	return nil
}

func (r *WishRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Wish, error) {
	var rows []models.Wish
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return wishesToDomain(rows), nil
}

func (r *WishRepository) ListByAuthor(ctx context.Context, groupID, authorID uuid.UUID) ([]domain.Wish, error) {
	var rows []models.Wish
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, authorID).
		Order("c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return wishesToDomain(rows), nil
}

func wishesToDomain(rows []models.Wish) []domain.Wish {
	wishes := make([]domain.Wish, 0, len(rows))
	for _, m := range rows {
		wishes = append(wishes, wishToDomain(m))
	}
	return wishes
}
