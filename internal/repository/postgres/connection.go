package postgres

import (
	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	// Auto-migrate tables
	err = db.AutoMigrate(
		&domain.User{},
		&domain.ChatSession{},
		&domain.Message{},
		&domain.ChatHistory{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Message: NewMessageRepository(db),
		History: NewChatHistoryRepository(db),
		Session: NewSessionStore(db),
	}
}
