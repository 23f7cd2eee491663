package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

// Auth guards routes that need a signed-in user.
type Auth struct {
	auth Authenticator
	log  *zap.SugaredLogger
}

func NewAuth(auth Authenticator, log *zap.SugaredLogger) *Auth {
	return &Auth{auth: auth, log: log}
}

// Require rejects requests without a valid "Authorization: Bearer" token and
// stores the user in the request context otherwise.
func (a *Auth) Require(next http.Handler) http.Handler {
	return a.require(next, false)
}

// RequireWithQueryToken also accepts ?token=, for browser WebSocket clients
// that cannot set headers.
func (a *Auth) RequireWithQueryToken(next http.Handler) http.Handler {
	return a.require(next, true)
}

func (a *Auth) require(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" && allowQuery {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			return
		}

		user, err := a.auth.CurrentUser(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrTokenExpired):
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Token expired")
			case errors.Is(err, models.ErrInvalidToken), errors.Is(err, models.ErrUnauthorized):
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			default:
				a.log.Errorw("failed to resolve token", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user stored by Require.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok && user != nil
}
