package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wishgifthub/wishgifthub/internal/domain"
	"github.com/wishgifthub/wishgifthub/internal/infrastructure/database/models"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func groupToDomain(m models.Group) domain.Group {
	return domain.Group{
		ID:        m.ID,
		Name:      m.Name,
		Type:      domain.GroupType(m.Type),
		AdminID:   m.AdminID,
		CreatedAt: m.CDate,
	}
}

func (r *GroupRepository) Create(ctx context.Context, group domain.Group) (domain.Group, error) {
	model := models.Group{
		Name:    group.Name,
		Type:    string(group.Type),
		AdminID: group.AdminID,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Group{}, err
	}
	return groupToDomain(model), nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Group, error) {
	var model models.Group
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Group{}, domain.NotFoundError{Resource: "group"}
	}
	if err != nil {
		return domain.Group{}, err
	}
	return groupToDomain(model), nil
}

func (r *GroupRepository) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]domain.Group, error) {
	var rows []models.Group
	err := r.db.WithContext(ctx).
		Where("admin_id = ?", adminID).
		Order("c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	groups := make([]domain.Group, 0, len(rows))
	for _, m := range rows {
		groups = append(groups, groupToDomain(m))
	}
	return groups, nil
}

func (r *GroupRepository) Update(ctx context.Context, group domain.Group) (domain.Group, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Group{}).
		Where("id = ?", group.ID).
		Updates(map[string]any{
			"name": group.Name,
			"type": string(group.Type),
		})
	if result.Error != nil {
		return domain.Group{}, result.Error
	}
	if result.RowsAffected == 0 {
		return domain.Group{}, domain.NotFoundError{Resource: "group"}
	}
	return r.GetByID(ctx, group.ID)
}

func (r *GroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Group{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "group"}
	}
	return nil
}
