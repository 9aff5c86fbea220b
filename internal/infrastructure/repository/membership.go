package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wishgifthub/wishgifthub/internal/domain"
	"github.com/wishgifthub/wishgifthub/internal/infrastructure/database/models"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Join upserts the (user, group) pair. The ON CONFLICT DO NOTHING on
// the composite primary key makes it safe against concurrent duplicate
// acceptances: exactly one row survives and neither caller errors.
func (r *MembershipRepository) Join(ctx context.Context, userID, groupID uuid.UUID) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "group_id"}},
		DoNothing: true,
	}).Create(&models.UserGroup{
		UserID:  userID,
		GroupID: groupID,
	}).Error
}

func (r *MembershipRepository) Exists(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserGroup{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MembershipRepository) GroupIDsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.UserGroup{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *MembershipRepository) GroupsOf(ctx context.Context, userID uuid.UUID) ([]domain.Group, error) {
	var rows []models.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		Order("groups.c_date ASC").
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

func (r *MembershipRepository) MembersOf(ctx context.Context, groupID uuid.UUID) ([]domain.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_groups ON user_groups.user_id = users.id").
		Where("user_groups.group_id = ?", groupID).
		Order("users.c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		users = append(users, userToDomain(m))
	}
	return users, nil
}
