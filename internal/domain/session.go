package domain

import "time"

// Session is an authenticated client session. The refresh token itself is
// never stored, only its hash. Timestamps are Unix milliseconds.
type Session struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	RefreshTokenHash string `json:"-"`
	IPAddress        string `json:"ip_address,omitempty"`
	CreateAt         int64  `json:"create_at"`
	LastSeenAt       int64  `json:"last_seen_at"`
	ExpiresAt        int64  `json:"expires_at"`
}

// IsExpired returns true if the session's refresh token can no longer be
// used.
func (s *Session) IsExpired() bool {
	return time.Now().UnixMilli() >= s.ExpiresAt
}
