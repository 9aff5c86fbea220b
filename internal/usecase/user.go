package usecase

import (
	"context"

	"github.com/wishgifthub/wishgifthub/internal/domain"
)

type UserUsecase struct {
	users UserRepository
}

func NewUserUsecase(users UserRepository) *UserUsecase {
	return &UserUsecase{users: users}
}

// UpdateProfile sets the requester's display attributes. A nil value
// leaves the attribute as it is; only supplied fields are written.
func (uc *UserUsecase) UpdateProfile(ctx context.Context, req domain.Requester, avatarID, pseudo *string) (domain.User, error) {
	return uc.users.UpdateProfile(ctx, req.UserID, avatarID, pseudo)
}

// Get returns the requester's own account.
func (uc *UserUsecase) Get(ctx context.Context, req domain.Requester) (domain.User, error) {
	return uc.users.GetByID(ctx, req.UserID)
}
