package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dom/daily-chat/internal/api/middleware"
	"github.com/dom/daily-chat/internal/config"
	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/service"
)

type AuthHandler struct {
	authService    *service.AuthService
	sessionService *service.SessionService
	cfg            *config.Config
}

func NewAuthHandler(authService *service.AuthService, sessionService *service.SessionService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		cfg:            cfg,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	AsAdmin  bool   `json:"asAdmin"`
}

type LoginResponse struct {
	User       domain.SessionUser `json:"user"`
	RedirectTo string             `json:"redirectTo"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Username) < 3 || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
		AsAdmin:  req.AsAdmin,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		case errors.Is(err, domain.ErrAdminRequired):
			http.Error(w, "Admin access denied", http.StatusForbidden)
		default:
			log.Printf("ERROR [AuthHandler.Login] %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	// Open today's room eagerly so the first chat read after login is warm.
	if _, err := h.sessionService.EnsureActive(r.Context()); err != nil {
		log.Printf("ERROR [AuthHandler.Login] ensure session: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, result.Token, int(h.cfg.SessionDuration().Seconds()))

	redirectTo := "/chat"
	if result.User.IsAdmin && req.AsAdmin {
		redirectTo = "/admin"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{
		User:       result.User,
		RedirectTo: redirectTo,
	})
}

// Logout clears the credential cookie. Stateless tokens mean there is no
// store mutation: the token simply stops being presented.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -1)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.IsProduction(),
	})
}
