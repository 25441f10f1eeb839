package service

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/repository"
	"github.com/google/uuid"
)

const maxMessageLength = 1000

type ChatService struct {
	messageRepo repository.MessageRepository
	historyRepo repository.ChatHistoryRepository
	userRepo    repository.UserRepository
	sessions    *SessionService
	publisher   Publisher
}

func NewChatService(messageRepo repository.MessageRepository, historyRepo repository.ChatHistoryRepository, userRepo repository.UserRepository, sessions *SessionService, publisher Publisher) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		sessions:    sessions,
		publisher:   publisher,
	}
}

// ChatMessage is a live message with its sender's username resolved.
type ChatMessage struct {
	ID             uuid.UUID `json:"id"`
	SenderID       uuid.UUID `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
	SessionID      uuid.UUID `json:"sessionId"`
}

// HistoryEntry is an archive record with its snapshot decoded.
type HistoryEntry struct {
	ID        uuid.UUID               `json:"id"`
	SessionID uuid.UUID               `json:"sessionId"`
	SavedData *domain.ArchivedSession `json:"savedData"`
}

// ChatState is the authoritative read model for the chat view.
type ChatState struct {
	User             domain.SessionUser  `json:"user"`
	Session          *domain.ChatSession `json:"session"`
	SessionExpiresAt time.Time           `json:"sessionExpiresAt"`
	Messages         []ChatMessage       `json:"messages"`
	History          []HistoryEntry      `json:"history"`
}

// PostMessage validates the text and inserts a message against the session
// resolved at call time, never a client-supplied one. A client holding a
// stale session id therefore cannot write into it.
func (s *ChatService) PostMessage(ctx context.Context, sender domain.SessionUser, text string) (*domain.Message, error) {
	if text == "" || utf8.RuneCountInString(text) > maxMessageLength {
		return nil, domain.ErrInvalidMessage
	}

	session, err := s.sessions.EnsureActive(ctx)
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		ID:        uuid.New(),
		SenderID:  sender.ID,
		Text:      text,
		SessionID: session.ID,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.MessageCreated(message)
	}

	return message, nil
}

// State loads the current session's messages and the full archive list.
// History is sorted by archive time, newest first; records with no decodable
// archive time sort as zero.
func (s *ChatService) State(ctx context.Context, user domain.SessionUser) (*ChatState, error) {
	session, err := s.sessions.EnsureActive(ctx)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
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
		return nil, err
	}

	chatMessages := make([]ChatMessage, 0, len(messages))
	for _, message := range messages {
		chatMessages = append(chatMessages, ChatMessage{
			ID:             message.ID,
			SenderID:       message.SenderID,
			SenderUsername: usernames[message.SenderID],
			Text:           message.Text,
			CreatedAt:      message.CreatedAt,
			SessionID:      message.SessionID,
		})
	}

	history, err := s.History(ctx)
	if err != nil {
		return nil, err
	}

	return &ChatState{
		User:             user,
		Session:          session,
		SessionExpiresAt: s.sessions.ExpiresAt(session),
		Messages:         chatMessages,
		History:          history,
	}, nil
}

// History returns every archive record, newest first.
func (s *ChatService) History(ctx context.Context) ([]HistoryEntry, error) {
	records, err := s.historyRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, record := range records {
		entry := HistoryEntry{
			ID:        record.ID,
			SessionID: record.SessionID,
		}
		if len(record.SavedData) > 0 {
			var payload domain.ArchivedSession
			if err := json.Unmarshal(record.SavedData, &payload); err != nil {
				log.Printf("ERROR [ChatService.History] undecodable snapshot for %s: %v", record.ID, err)
			} else {
				entry.SavedData = &payload
			}
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return archivedAt(entries[i]).After(archivedAt(entries[j]))
	})

	return entries, nil
}

func archivedAt(entry HistoryEntry) time.Time {
	if entry.SavedData == nil {
		return time.Time{}
	}
	return entry.SavedData.ArchivedAt
}
