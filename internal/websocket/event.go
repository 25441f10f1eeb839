package websocket

import (
	"encoding/json"
	"log"

	"github.com/dom/daily-chat/internal/domain"
)

// Event types pushed to clients. Both correspond to row inserts in the store;
// clients use them to reconcile their view without polling.
const (
	EventMessageCreated = "message.created"
	EventSessionCreated = "session.created"
)

type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newEvent(eventType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: eventType, Payload: data})
}

// MessageCreated broadcasts a message-insert event. Implements the service
// layer's Publisher interface.
func (h *Hub) MessageCreated(message *domain.Message) {
	data, err := newEvent(EventMessageCreated, message)
	if err != nil {
		log.Printf("ERROR [websocket.MessageCreated] encode failed: %v", err)
		return
	}
	h.Broadcast(data)
}

// SessionCreated broadcasts a session-insert event.
func (h *Hub) SessionCreated(session *domain.ChatSession) {
	data, err := newEvent(EventSessionCreated, session)
	if err != nil {
		log.Printf("ERROR [websocket.SessionCreated] encode failed: %v", err)
		return
	}
	h.Broadcast(data)
}
