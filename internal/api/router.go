package api

import (
	"net/http"

	"github.com/dom/daily-chat/internal/api/handlers"
	"github.com/dom/daily-chat/internal/api/middleware"
	"github.com/dom/daily-chat/internal/config"
	"github.com/dom/daily-chat/internal/service"
	"github.com/dom/daily-chat/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, services.Session, cfg)
	chatHandler := handlers.NewChatHandler(services.Chat)
	adminHandler := handlers.NewAdminHandler(services.Session, services.Chat, services.User)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, cfg)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth, cfg.SessionCookieName))
				r.Get("/me", authHandler.Me)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth, cfg.SessionCookieName))

			r.Get("/chat/state", chatHandler.GetState)
			r.Post("/messages", chatHandler.PostMessage)

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Post("/admin/reset", adminHandler.Reset)
				r.Get("/admin/users", adminHandler.ListUsers)
				r.Delete("/admin/users", adminHandler.DeleteUser)
				r.Get("/admin/chat-history", adminHandler.ChatHistory)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
