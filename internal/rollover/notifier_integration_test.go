package rollover_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dom/daily-chat/internal/rollover"
	"github.com/dom/daily-chat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	refreshed    chan rollover.View
	unauthorized chan struct{}
	next         rollover.View
}

func (h *recordingHandler) Refresh(ctx context.Context) (rollover.View, error) {
	select {
	case h.refreshed <- h.next:
	default:
	}
	return h.next, nil
}

func (h *recordingHandler) Unauthorized() {
	close(h.unauthorized)
}

func TestNotifier_RefreshesOnRotation(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, userCookie := testutil.NewUserBuilder().WithUsername("alice").BuildAndLogin(t, ts)
	_, adminCookie := testutil.NewUserBuilder().WithUsername("root").AsAdmin().BuildAndLogin(t, ts)

	session, err := ts.Services.Session.EnsureActive(context.Background())
	require.NoError(t, err)

	handler := &recordingHandler{
		refreshed:    make(chan rollover.View, 1),
		unauthorized: make(chan struct{}),
		next:         rollover.View{SessionID: session.ID, SessionStart: session.StartTime},
	}

	wsURL := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/api/v1/ws"
	header := http.Header{}
	header.Set("Cookie", fmt.Sprintf("%s=%s", ts.Config.SessionCookieName, userCookie.Value))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notifier := rollover.NewNotifier(wsURL, header, handler.next, handler)
	go notifier.Run(ctx)

	// Give the subscription a moment to attach before rotating
	time.Sleep(200 * time.Millisecond)

	req, err := http.NewRequest(http.MethodPost, ts.APIURL("/admin/reset"), nil)
	require.NoError(t, err)
	req.AddCookie(adminCookie)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	select {
	case view := <-handler.refreshed:
		assert.Equal(t, session.ID, view.SessionID)
	case <-time.After(5 * time.Second):
		t.Fatal("notifier never refreshed after the session rotation")
	}
}
