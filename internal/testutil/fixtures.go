package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/daily-chat/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	password string
	isAdmin  bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password: "testpassword123",
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(name string) *UserBuilder {
	b.username = name
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// AsAdmin marks the user as an administrator
func (b *UserBuilder) AsAdmin() *UserBuilder {
	b.isAdmin = true
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		PasswordHash: string(hashedPassword),
		IsAdmin:      b.isAdmin,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildAndLogin creates the user, logs in through the API, and returns the
// user together with the session cookie.
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, *http.Cookie) {
	t.Helper()

	user, password := b.Build(t, ts.DB.DB)

	reqBody := map[string]interface{}{
		"username": user.Username,
		"password": password,
		"asAdmin":  user.IsAdmin,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == ts.Config.SessionCookieName {
			return user, cookie
		}
	}

	t.Fatalf("login response did not set the session cookie")
	return nil, nil
}

// SessionBuilder creates chat sessions directly in the store, bypassing the
// lifecycle manager, so tests can stage expired or stale sessions.
type SessionBuilder struct {
	date      string
	startTime time.Time
}

// NewSessionBuilder creates a builder for a session that started just now.
func NewSessionBuilder() *SessionBuilder {
	now := time.Now()
	return &SessionBuilder{
		date:      now.Format(domain.DateLayout),
		startTime: now,
	}
}

// StartedAt sets the session start instant and its calendar date.
func (b *SessionBuilder) StartedAt(start time.Time) *SessionBuilder {
	b.startTime = start
	b.date = start.Format(domain.DateLayout)
	return b
}

// WithDate overrides the stored calendar date independently of the start time.
func (b *SessionBuilder) WithDate(date string) *SessionBuilder {
	b.date = date
	return b
}

// Build persists the session
func (b *SessionBuilder) Build(t *testing.T, db *gorm.DB) *domain.ChatSession {
	t.Helper()

	session := &domain.ChatSession{
		ID:        uuid.New(),
		Date:      b.date,
		StartTime: b.startTime,
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return session
}

// BuildMessage persists a message for the given sender and session.
func BuildMessage(t *testing.T, db *gorm.DB, sender *domain.User, session *domain.ChatSession, text string, createdAt time.Time) *domain.Message {
	t.Helper()

	message := &domain.Message{
		ID:        uuid.New(),
		SenderID:  sender.ID,
		Text:      text,
		SessionID: session.ID,
		CreatedAt: createdAt,
	}
	if err := db.Create(message).Error; err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	return message
}
