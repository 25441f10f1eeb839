package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/repository/postgres"
	"github.com/dom/daily-chat/internal/service"
	"github.com/dom/daily-chat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newChatService(t *testing.T, db *gorm.DB) (*service.ChatService, *service.SessionService) {
	t.Helper()
	repos := postgres.NewRepositories(db)
	cfg := testutil.TestConfig()
	sessionService := service.NewSessionService(repos.Session, repos.User, cfg, nil)
	chatService := service.NewChatService(repos.Message, repos.History, repos.User, sessionService, nil)
	return chatService, sessionService
}

func TestChatService_PostMessage(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	chatService, sessionService := newChatService(t, testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithUsername("alice").Build(t, testDB.DB)
	sender := domain.SessionUser{ID: user.ID, Username: user.Username}

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "valid message", text: "hello room"},
		{name: "single character", text: "x"},
		{name: "maximum length", text: strings.Repeat("a", 1000)},
		{name: "maximum length multibyte", text: strings.Repeat("é", 1000)},
		{name: "empty text", text: "", wantErr: domain.ErrInvalidMessage},
		{name: "too long", text: strings.Repeat("a", 1001), wantErr: domain.ErrInvalidMessage},
		{name: "too long multibyte", text: strings.Repeat("é", 1001), wantErr: domain.ErrInvalidMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, err := chatService.PostMessage(ctx, sender, tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.text, message.Text)
			assert.Equal(t, user.ID, message.SenderID)

			// The message always lands in the currently active session
			current, err := sessionService.EnsureActive(ctx)
			require.NoError(t, err)
			assert.Equal(t, current.ID, message.SessionID)
		})
	}
}

func TestChatService_PostMessage_RotatesStaleSessionFirst(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	chatService, _ := newChatService(t, testDB.DB)
	ctx := context.Background()

	stale := testutil.NewSessionBuilder().
		StartedAt(time.Now().Add(-25 * time.Hour)).
		Build(t, testDB.DB)
	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	message, err := chatService.PostMessage(ctx, domain.SessionUser{ID: user.ID, Username: user.Username}, "fresh start")
	require.NoError(t, err)

	// The stale session can no longer receive writes
	assert.NotEqual(t, stale.ID, message.SessionID)
}

func TestChatService_State(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	chatService, sessionService := newChatService(t, testDB.DB)
	ctx := context.Background()

	alice, _ := testutil.NewUserBuilder().WithUsername("alice").Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().WithUsername("bob").Build(t, testDB.DB)
	viewer := domain.SessionUser{ID: alice.ID, Username: alice.Username}

	session, err := sessionService.EnsureActive(ctx)
	require.NoError(t, err)

	testutil.BuildMessage(t, testDB.DB, alice, session, "hi", time.Now().Add(-2*time.Minute))
	testutil.BuildMessage(t, testDB.DB, bob, session, "hey", time.Now().Add(-time.Minute))

	state, err := chatService.State(ctx, viewer)
	require.NoError(t, err)

	assert.Equal(t, viewer, state.User)
	assert.Equal(t, session.ID, state.Session.ID)
	assert.Equal(t, session.StartTime.Add(24*time.Hour).Unix(), state.SessionExpiresAt.Unix())

	require.Len(t, state.Messages, 2)
	assert.Equal(t, "hi", state.Messages[0].Text)
	assert.Equal(t, "alice", state.Messages[0].SenderUsername)
	assert.Equal(t, "hey", state.Messages[1].Text)
	assert.Equal(t, "bob", state.Messages[1].SenderUsername)

	assert.Empty(t, state.History)
}

func TestChatService_State_HistorySortedNewestFirst(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	chatService, sessionService := newChatService(t, testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithUsername("alice").Build(t, testDB.DB)
	viewer := domain.SessionUser{ID: user.ID, Username: user.Username}

	// Two rotations produce two archive records in order
	_, err := sessionService.EnsureActive(ctx)
	require.NoError(t, err)
	first, err := sessionService.ForceReset(ctx)
	require.NoError(t, err)
	_, err = sessionService.ForceReset(ctx)
	require.NoError(t, err)

	state, err := chatService.State(ctx, viewer)
	require.NoError(t, err)

	require.Len(t, state.History, 2)
	require.NotNil(t, state.History[0].SavedData)
	require.NotNil(t, state.History[1].SavedData)
	assert.Equal(t, first.ID, state.History[0].SessionID, "newest archive first")
	assert.True(t, state.History[0].SavedData.ArchivedAt.After(state.History[1].SavedData.ArchivedAt) ||
		state.History[0].SavedData.ArchivedAt.Equal(state.History[1].SavedData.ArchivedAt))
}
