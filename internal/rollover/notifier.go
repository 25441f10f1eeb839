// Package rollover implements the client-side reconciliation rule: react to
// store insert events pushed over the websocket and re-fetch the read model
// when the view may be stale. The refresh is "silent" in that the current
// state is kept on screen until the fresh one arrives.
package rollover

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dom/daily-chat/internal/domain"
	ws "github.com/dom/daily-chat/internal/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// View is the client's current knowledge of the session it is looking at.
type View struct {
	SessionID    uuid.UUID
	SessionStart time.Time
}

// ShouldRefresh decides whether an event invalidates the view.
//
// A message insert matters only when it lands in the session the client is
// watching. A session insert matters when it is strictly newer than the
// client's session: that is how a rotation performed by another client or by
// an admin reset is picked up.
func ShouldRefresh(event ws.Event, view View) bool {
	switch event.Type {
	case ws.EventMessageCreated:
		var message domain.Message
		if err := json.Unmarshal(event.Payload, &message); err != nil {
			return false
		}
		return message.SessionID == view.SessionID

	case ws.EventSessionCreated:
		var session domain.ChatSession
		if err := json.Unmarshal(event.Payload, &session); err != nil {
			return false
		}
		return session.StartTime.After(view.SessionStart)
	}

	return false
}

// Handler receives notifier callbacks. Refresh re-fetches the read model and
// returns the view it produced; Unauthorized is called when a refresh reports
// the caller as unauthenticated, at which point the owner abandons the chat
// view for the login entry point.
type Handler interface {
	Refresh(ctx context.Context) (View, error)
	Unauthorized()
}

// Notifier consumes the event stream for one client.
type Notifier struct {
	url     string
	header  http.Header
	handler Handler
	view    View
}

// NewNotifier prepares a subscriber for the given websocket URL. The header
// carries the credential cookie.
func NewNotifier(url string, header http.Header, view View, handler Handler) *Notifier {
	return &Notifier{
		url:     url,
		header:  header,
		handler: handler,
		view:    view,
	}
}

// Run dials the event stream and reconciles until the connection drops or
// ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, n.url, n.header)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var event ws.Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("ERROR [rollover.Notifier] bad event: %v", err)
			continue
		}

		if !ShouldRefresh(event, n.view) {
			continue
		}

		view, err := n.handler.Refresh(ctx)
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) {
				n.handler.Unauthorized()
				return err
			}
			log.Printf("ERROR [rollover.Notifier] refresh failed: %v", err)
			continue
		}
		n.view = view
	}
}
