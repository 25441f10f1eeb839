package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/dom/daily-chat/internal/domain"
	"github.com/dom/daily-chat/internal/service"
)

type contextKey string

const userKey contextKey = "sessionUser"

// Auth resolves the caller's identity from the session cookie. A missing,
// garbled or expired token all leave the caller anonymous: verification
// errors are logged and the request is rejected the same way a missing
// cookie is.
func Auth(authService *service.AuthService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := authService.VerifyToken(cookie.Value)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token verification failed: %v", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, *user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects authenticated non-admin callers. Must run after Auth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if !user.IsAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func CurrentUser(ctx context.Context) (domain.SessionUser, bool) {
	user, ok := ctx.Value(userKey).(domain.SessionUser)
	return user, ok
}
