package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wishgifthub/wishgifthub/internal/domain"
	"github.com/wishgifthub/wishgifthub/internal/infrastructure/database/models"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func invitationToDomain(m models.Invitation) domain.Invitation {
	return domain.Invitation{
		ID:        m.ID,
		GroupID:   m.GroupID,
		Email:     m.Email,
		Token:     m.Token,
		Accepted:  m.Accepted,
		UserID:    m.UserID,
		CreatedAt: m.CDate,
	}
}

func (r *InvitationRepository) Create(ctx context.Context, inv domain.Invitation) (domain.Invitation, error) {
	model := models.Invitation{
		GroupID: inv.GroupID,
		Email:   inv.Email,
		Token:   inv.Token,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Invitation{}, err
	}
	return invitationToDomain(model), nil
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token uuid.UUID) (domain.Invitation, error) {
	var model models.Invitation
	err := r.db.WithContext(ctx).First(&model, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Invitation{}, domain.NotFoundError{Resource: "invitation"}
	}
	if err != nil {
		return domain.Invitation{}, err
	}
	return invitationToDomain(model), nil
}

func (r *InvitationRepository) MarkAccepted(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"accepted": true,
			"user_id":  userID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "invitation"}
	}
	return nil
}

func (r *InvitationRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]domain.Invitation, error) {
	var rows []models.Invitation
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("c_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	invitations := make([]domain.Invitation, 0, len(rows))
	for _, m := range rows {
		invitations = append(invitations, invitationToDomain(m))
	}
	return invitations, nil
}
