package api

import (
	"net/http"

	"github.com/relaychat/relay-server/internal/http/response"
)

// requireAuth guards raw (non-huma) routes like the SSE stream and avatar
// serving. It relies on authMiddleware having already resolved the token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserIDFromContext(r.Context()) == "" {
			response.Unauthorized(w, "Authentication required", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
