package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dom/daily-chat/internal/api/middleware"
	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/service"
	"github.com/google/uuid"
)

type AdminHandler struct {
	sessionService *service.SessionService
	chatService    *service.ChatService
	userService    *service.UserService
}

func NewAdminHandler(sessionService *service.SessionService, chatService *service.ChatService, userService *service.UserService) *AdminHandler {
	return &AdminHandler{
		sessionService: sessionService,
		chatService:    chatService,
		userService:    userService,
	}
}

// Reset archives the current session immediately, expired or not, and
// returns its replacement.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.ForceReset(r.Context())
	if err != nil {
		log.Printf("ERROR [AdminHandler.Reset] %v", err)
		http.Error(w, "Unable to reset chat", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]*domain.ChatSession{"session": session})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		log.Printf("ERROR [AdminHandler.ListUsers] %v", err)
		http.Error(w, "Unable to load users", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]*domain.User{"users": users})
}

type DeleteUserRequest struct {
	UserID string `json:"userId"`
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req DeleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.userService.Delete(r.Context(), admin, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfDelete):
			http.Error(w, "You cannot delete your own account", http.StatusBadRequest)
		case errors.Is(err, domain.ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		default:
			log.Printf("ERROR [AdminHandler.DeleteUser] %v", err)
			http.Error(w, "Unable to delete user", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (h *AdminHandler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.chatService.History(r.Context())
	if err != nil {
		log.Printf("ERROR [AdminHandler.ChatHistory] %v", err)
		http.Error(w, "Unable to load chat history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]service.HistoryEntry{"history": history})
}
