package service

import (
	"context"
	"errors"

	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

// Delete removes a user account. Admins cannot delete themselves. Messages
// already sent by the user stay in place; once the row is gone they archive
// with an empty sender name.
func (s *UserService) Delete(ctx context.Context, admin domain.SessionUser, userID uuid.UUID) error {
	if userID == admin.ID {
		return domain.ErrSelfDelete
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	return s.userRepo.Delete(ctx, userID)
}
