package postgres

import (
	"context"
	"errors"

	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// rotationLockKey is the advisory lock key serializing session rotation.
// All writers of the sessions/chat_histories tables go through this lock.
const rotationLockKey = 0x63686174 // "chat"

type sessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *sessionStore {
	return &sessionStore{db: db}
}

// LatestSession returns the session with the newest start_time, or nil when
// the table is empty. The ordering between two sessions with identical
// start_time is whatever the store returns; correct operation never produces
// that state.
func (s *sessionStore) LatestSession(ctx context.Context) (*domain.ChatSession, error) {
	var session domain.ChatSession
	err := s.db.WithContext(ctx).
		Order("start_time desc").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (s *sessionStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s *sessionStore) MessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *sessionStore) CreateHistory(ctx context.Context, record *domain.ChatHistory) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *sessionStore) DeleteMessagesBySession(ctx context.Context, sessionID uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&domain.Message{}, "session_id = ?", sessionID).Error
}

// WithRotationLock runs fn inside a single transaction holding a
// transaction-scoped advisory lock. Concurrent callers queue behind the lock
// and observe each other's committed rotations when they re-read.
func (s *sessionStore) WithRotationLock(ctx context.Context, fn func(tx repository.SessionStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", rotationLockKey).Error; err != nil {
			return err
		}
		return fn(&sessionStore{db: tx})
	})
}
