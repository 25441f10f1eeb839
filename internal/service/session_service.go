package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/dom/daily-chat/internal/config"
	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/repository"
	"github.com/google/uuid"
)

// Publisher receives row-insert events after they commit. The websocket hub
// implements it; tests use a recording stub.
type Publisher interface {
	MessageCreated(message *domain.Message)
	SessionCreated(session *domain.ChatSession)
}

// SessionService owns the chat session lifecycle: it is the exclusive writer
// of sessions and chat histories and the exclusive deleter of message rows.
// States for the current-session slot: absent -> active -> expired ->
// archived, replaced by a new active session.
type SessionService struct {
	store     repository.SessionStore
	userRepo  repository.UserRepository
	cfg       *config.Config
	publisher Publisher
}

func NewSessionService(store repository.SessionStore, userRepo repository.UserRepository, cfg *config.Config, publisher Publisher) *SessionService {
	return &SessionService{
		store:     store,
		userRepo:  userRepo,
		cfg:       cfg,
		publisher: publisher,
	}
}

// IsExpired reports whether the session has left its validity window: either
// the configured duration has elapsed since StartTime, or the stored calendar
// date no longer matches today.
func (s *SessionService) IsExpired(session *domain.ChatSession) bool {
	now := time.Now()
	if now.Sub(session.StartTime) >= s.cfg.SessionDuration() {
		return true
	}
	return session.Date != now.Format(domain.DateLayout)
}

// ExpiresAt returns the instant the session leaves its validity window by
// elapsed time.
func (s *SessionService) ExpiresAt(session *domain.ChatSession) time.Time {
	return session.StartTime.Add(s.cfg.SessionDuration())
}

// EnsureActive returns the current session, rotating first if the stored one
// has expired. While a session is active this is a single read with no
// writes, so it is safe to call on every request. Expiry is detected lazily
// here; there is no background timer.
func (s *SessionService) EnsureActive(ctx context.Context) (*domain.ChatSession, error) {
	session, err := s.store.LatestSession(ctx)
	if err != nil {
		return nil, err
	}
	if session != nil && !s.IsExpired(session) {
		return session, nil
	}

	return s.rotate(ctx, false)
}

// ForceReset archives the current session regardless of its expiry state and
// opens a new one. Administrative use only.
func (s *SessionService) ForceReset(ctx context.Context) (*domain.ChatSession, error) {
	return s.rotate(ctx, true)
}

// rotate performs the archive-then-create transition under the store's
// rotation lock. The expiry check is re-evaluated inside the lock, so two
// callers that both observed an expired session produce exactly one rotation:
// the second finds the successor already active and returns it.
func (s *SessionService) rotate(ctx context.Context, force bool) (*domain.ChatSession, error) {
	var result *domain.ChatSession

	err := s.store.WithRotationLock(ctx, func(tx repository.SessionStore) error {
		current, err := tx.LatestSession(ctx)
		if err != nil {
			return err
		}

		if current != nil {
			if !force && !s.IsExpired(current) {
				// Another caller rotated while we waited on the lock.
				result = current
				return nil
			}
			if err := s.archive(ctx, tx, current); err != nil {
				return err
			}
		}

		now := time.Now()
		next := &domain.ChatSession{
			ID:        uuid.New(),
			Date:      now.Format(domain.DateLayout),
			StartTime: now,
		}
		if err := tx.CreateSession(ctx, next); err != nil {
			return err
		}

		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil && result != nil {
		s.publisher.SessionCreated(result)
	}

	return result, nil
}

// archive snapshots the session's messages into a chat history record and
// removes the live rows. Runs inside the rotation transaction, so a failure
// at any step leaves the old session current and the caller retries later.
func (s *SessionService) archive(ctx context.Context, tx repository.SessionStore, session *domain.ChatSession) error {
	messages, err := tx.MessagesBySession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("%w: reading messages: %v", domain.ErrArchiveFailed, err)
	}

	senderIDs := make([]uuid.UUID, 0, len(messages))
	seen := make(map[uuid.UUID]bool)
	for _, message := range messages {
		if !seen[message.SenderID] {
			seen[message.SenderID] = true
			senderIDs = append(senderIDs, message.SenderID)
		}
	}

	usernames, err := s.userRepo.UsernamesByIDs(ctx, senderIDs)
	if err != nil {
		return fmt.Errorf("%w: resolving senders: %v", domain.ErrArchiveFailed, err)
	}

	archived := make([]domain.ArchivedMessage, 0, len(messages))
	for _, message := range messages {
		archived = append(archived, domain.ArchivedMessage{
			ID:             message.ID,
			SenderID:       message.SenderID,
			SenderUsername: usernames[message.SenderID],
			Text:           message.Text,
			CreatedAt:      message.CreatedAt,
			SessionID:      message.SessionID,
		})
	}

	payload := domain.ArchivedSession{
		Session:    *session,
		ArchivedAt: time.Now(),
		Messages:   archived,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encoding snapshot: %v", domain.ErrArchiveFailed, err)
	}

	record := &domain.ChatHistory{
		ID:        uuid.New(),
		SessionID: session.ID,
		SavedData: data,
	}
	if err := tx.CreateHistory(ctx, record); err != nil {
		return fmt.Errorf("%w: inserting history: %v", domain.ErrArchiveFailed, err)
	}

	if err := tx.DeleteMessagesBySession(ctx, session.ID); err != nil {
		return fmt.Errorf("%w: deleting messages: %v", domain.ErrArchiveFailed, err)
	}

	log.Printf("archived session %s (%d messages)", session.ID, len(archived))
	return nil
}
