package service

import (
	"github.com/dom/daily-chat/internal/config"
	"github.com/dom/daily-chat/internal/repository"
)

type Services struct {
	Auth    *AuthService
	Session *SessionService
	Chat    *ChatService
	User    *UserService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, publisher Publisher) *Services {
	sessionService := NewSessionService(repos.Session, repos.User, cfg, publisher)
	return &Services{
		Auth:    NewAuthService(repos.User, cfg),
		Session: sessionService,
		Chat:    NewChatService(repos.Message, repos.History, repos.User, sessionService, publisher),
		User:    NewUserService(repos.User),
	}
}
