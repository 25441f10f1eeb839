package postgres

import (
	"context"

	"github.com/dom/daily-chat/internal/domain"
	"gorm.io/gorm"
)

type chatHistoryRepository struct {
	db *gorm.DB
}

func NewChatHistoryRepository(db *gorm.DB) *chatHistoryRepository {
	return &chatHistoryRepository{db: db}
}

func (r *chatHistoryRepository) Create(ctx context.Context, record *domain.ChatHistory) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *chatHistoryRepository) List(ctx context.Context) ([]*domain.ChatHistory, error) {
	var records []*domain.ChatHistory
	err := r.db.WithContext(ctx).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
