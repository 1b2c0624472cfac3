package domain

// PresenceState enumerates user presence values.
type PresenceState string

// Presence states.
const (
	PresenceOnline  PresenceState = "online"
	PresenceAway    PresenceState = "away"
	PresenceDND     PresenceState = "dnd"
	PresenceOffline PresenceState = "offline"
)

// Status is a user's current presence.
type Status struct {
	UserID         string        `json:"user_id"`
	State          PresenceState `json:"state"`
	Manual         bool          `json:"manual,omitempty"`
	LastActivityAt int64         `json:"last_activity_at"`
}
