package repository

import (
	"context"

	"github.com/dom/daily-chat/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UsernamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Message, error)
}

type ChatHistoryRepository interface {
	Create(ctx context.Context, record *domain.ChatHistory) error
	List(ctx context.Context) ([]*domain.ChatHistory, error)
}

// SessionStore is the accessor for the session/message/archive tables used by
// the session lifecycle. WithRotationLock runs fn inside a single store
// transaction while holding the rotation lock, so at most one rotation
// sequence executes at a time; fn receives a SessionStore bound to that
// transaction.
type SessionStore interface {
	LatestSession(ctx context.Context) (*domain.ChatSession, error)
	CreateSession(ctx context.Context, session *domain.ChatSession) error
	MessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Message, error)
	CreateHistory(ctx context.Context, record *domain.ChatHistory) error
	DeleteMessagesBySession(ctx context.Context, sessionID uuid.UUID) error
	WithRotationLock(ctx context.Context, fn func(tx SessionStore) error) error
}

type Repositories struct {
	User    UserRepository
	Message MessageRepository
	History ChatHistoryRepository
	Session SessionStore
}
