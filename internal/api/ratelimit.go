package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/relaychat/relay-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a rate limiter allowing rps requests per second
// per key with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return ratelimit.New(rps, burst)
}

// checkSearchRateLimit enforces the per-user search budget. Anonymous
// requests never get this far; auth runs first.
func (s *Server) checkSearchRateLimit(userID string) error {
	if s.searchRateLimiter.Allow(userID) {
		return nil
	}
	s.logger.Warn("search rate limit exceeded", "user_id", userID)
	return huma.Error429TooManyRequests("Too many search requests. Please slow down.")
}
