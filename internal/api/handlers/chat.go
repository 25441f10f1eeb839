package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dom/daily-chat/internal/api/middleware"
	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) GetState(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.chatService.State(r.Context(), user)
	if err != nil {
		log.Printf("ERROR [ChatHandler.GetState] %v", err)
		http.Error(w, "Unable to load chat state", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

type PostMessageRequest struct {
	Text string `json:"text"`
}

func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	message, err := h.chatService.PostMessage(r.Context(), user, req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMessage) {
			http.Error(w, "Message text must be between 1 and 1000 characters", http.StatusBadRequest)
			return
		}
		log.Printf("ERROR [ChatHandler.PostMessage] %v", err)
		http.Error(w, "Unable to send message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(message)
}
