package handlers

import (
	"log"
	"net/http"

	"github.com/dom/daily-chat/internal/config"
	"github.com/dom/daily-chat/internal/service"
	"github.com/dom/daily-chat/internal/websocket"
	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

type WebSocketHandler struct {
	hub         *websocket.Hub
	authService *service.AuthService
	cfg         *config.Config
}

func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService, cfg *config.Config) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		cfg:         cfg,
	}
}

// Handle authenticates the subscriber and upgrades the connection. Browsers
// send the session cookie with the upgrade request; non-browser clients may
// pass the token as a query parameter instead.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(h.cfg.SessionCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.VerifyToken(token)
	if err != nil {
		log.Printf("ERROR [WebSocketHandler.Handle] token verification failed: %v", err)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, user.ID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
