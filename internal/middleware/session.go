package middleware

import (
	"context"
	"net/http"
	"time"

	"joules-shop/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// SessionCookieName is the cookie carrying the cart session ID.
	SessionCookieName = "joules_session"

	SessionIDKey contextKey = "session_id"
)

// SessionMiddleware issues a session cookie on first contact and refreshes
// the session's TTL on every request. The session ID scopes the cart and the
// flash message slot.
func SessionMiddleware(sessions session.Store, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string

			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				sessionID = cookie.Value
			} else {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if err := sessions.Touch(r.Context(), sessionID); err != nil {
				// Session liveness is advisory; the cart registry has its
				// own expiry.
				logger.Warn("Failed to touch session", zap.Error(err))
			}

			ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID extracts the cart session ID from the request context.
func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok
}
