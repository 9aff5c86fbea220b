package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wishgifthub/wishgifthub/internal/domain"
	"github.com/wishgifthub/wishgifthub/internal/infrastructure/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func userToDomain(m models.User) domain.User {
	return domain.User{
		ID:        m.ID,
		Email:     m.Email,
		IsAdmin:   m.IsAdmin,
		AvatarID:  m.AvatarID,
		Pseudo:    m.Pseudo,
		CreatedAt: m.CDate,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User, digest *string) (domain.User, error) {
	model := models.User{
		Email:        user.Email,
		PasswordHash: digest,
		IsAdmin:      user.IsAdmin,
		AvatarID:     user.AvatarID,
		Pseudo:       user.Pseudo,
	}
	err := r.db.WithContext(ctx).Create(&model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.User{}, domain.DuplicateError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, err
	}
	return userToDomain(model), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var model models.User
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, err
	}
	return userToDomain(model), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var model models.User
	err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, err
	}
	return userToDomain(model), nil
}

func (r *UserRepository) Credential(ctx context.Context, email string) (domain.User, *string, error) {
	var model models.User
	err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, nil, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, nil, err
	}
	return userToDomain(model), model.PasswordHash, nil
}

// UpdateProfile applies partial updates: a nil field is left untouched,
// never written to NULL.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, avatarID, pseudo *string) (domain.User, error) {
	updates := map[string]any{}
	if avatarID != nil {
		updates["avatar_id"] = *avatarID
	}
	if pseudo != nil {
		updates["pseudo"] = *pseudo
	}

	var model models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, "id = ?", id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&model).Updates(updates).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return domain.User{}, err
	}
	if avatarID != nil {
		model.AvatarID = avatarID
	}
	if pseudo != nil {
		model.Pseudo = pseudo
	}
	return userToDomain(model), nil
}
