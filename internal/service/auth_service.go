package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/daily-chat/internal/config"
	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

type LoginInput struct {
	Username string
	Password string
	AsAdmin  bool
}

type AuthResult struct {
	User  domain.SessionUser
	Token string
}

// Login verifies the username/password pair and issues a credential token.
// Unknown users and wrong passwords collapse into the same error. When
// AsAdmin is set, a non-admin account is rejected even with a valid password.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if input.AsAdmin && !user.IsAdmin {
		return nil, domain.ErrAdminRequired
	}

	sessionUser := domain.SessionUser{
		ID:       user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}

	token, err := s.IssueToken(sessionUser)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: sessionUser, Token: token}, nil
}

// IssueToken signs a credential token carrying the identity, valid for the
// configured session duration.
func (s *AuthService) IssueToken(user domain.SessionUser) (string, error) {
	if s.cfg.AuthSecret == "" {
		return "", domain.ErrNoSecret
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"isAdmin":  user.IsAdmin,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.SessionDuration()).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.AuthSecret))
}

// VerifyToken checks the signature and expiry and returns the embedded
// identity. Garbled, tampered and expired tokens all produce the same
// ErrInvalidToken so callers cannot distinguish them.
func (s *AuthService) VerifyToken(tokenString string) (*domain.SessionUser, error) {
	if s.cfg.AuthSecret == "" {
		return nil, domain.ErrNoSecret
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.AuthSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	username, _ := claims["username"].(string)
	isAdmin, _ := claims["isAdmin"].(bool)

	return &domain.SessionUser{
		ID:       id,
		Username: username,
		IsAdmin:  isAdmin,
	}, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
