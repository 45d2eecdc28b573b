package middlewares

import (
	"context"
	"net/http"

	"github.com/lexiconhq/tenant-auth/internal/http/httperrors"
	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
	"github.com/lexiconhq/tenant-auth/internal/session"
)

type sessionKey struct{}

// WithSession loads the session cookie, if any, into the request context.
// It never rejects; handlers that need authentication use RequireSession.
func WithSession(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, err := mgr.FromRequest(r); err == nil {
				ctx := context.WithValue(r.Context(), sessionKey{}, s)
				// App resources note who reached them; useful when
				// auditing cross-app access.
				logger.From(ctx).Debug("authenticated access",
					logger.UserKey(s.UserKey), logger.App(s.App))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects unauthenticated requests with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r.Context()) == nil {
			httperrors.WriteError(w, httperrors.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSession returns the session stored by WithSession, or nil.
func GetSession(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(sessionKey{}).(*session.Session); ok {
		return s
	}
	return nil
}
