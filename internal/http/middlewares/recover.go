package middlewares

import (
	"net/http"

	"github.com/lexiconhq/tenant-auth/internal/http/httperrors"
	"github.com/lexiconhq/tenant-auth/internal/observability/logger"
)

// WithRecover converts panics into 500 responses instead of dropping the
// connection.
func WithRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.From(r.Context()).Error("panic recovered", logger.Any("panic", rec))
				httperrors.WriteError(w, httperrors.ErrInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
