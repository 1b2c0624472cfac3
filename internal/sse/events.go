// Package sse implements Server-Sent Events for real-time workspace updates.
package sse

import (
	"time"

	"github.com/relaychat/relay-server/internal/domain"
)

// Relay uses SSE for server-to-client push only; everything else follows
// a request/response pattern.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventProfileUpdated represents a user profile change.
	EventProfileUpdated EventType = "profile.updated"
	// EventChannelMemberAdded represents users being added to a channel.
	EventChannelMemberAdded EventType = "channel.member_added"
	// EventStatusChanged represents a presence change.
	EventStatusChanged EventType = "status.changed"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event is a single server-sent event. UserID, when set, targets the event
// at one connected user; empty means broadcast to everyone.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
	UserID    string    `json:"-"`
}

// MemberAddedData is the payload of a channel.member_added event.
type MemberAddedData struct {
	ChannelID string   `json:"channelId"`
	UserIDs   []string `json:"userIds"`
}

// StatusChangedData is the payload of a status.changed event.
type StatusChangedData struct {
	UserID string               `json:"userId"`
	Status domain.PresenceState `json:"status"`
}

// NewProfileUpdatedEvent creates a profile update event. The payload is
// sanitized before broadcast.
func NewProfileUpdatedEvent(user *domain.User) Event {
	return Event{
		Type:      EventProfileUpdated,
		Timestamp: time.Now(),
		Data:      user.Sanitize(),
	}
}

// NewMemberAddedEvent creates a membership event for users joining a channel.
func NewMemberAddedEvent(channelID string, userIDs []string) Event {
	return Event{
		Type:      EventChannelMemberAdded,
		Timestamp: time.Now(),
		Data:      MemberAddedData{ChannelID: channelID, UserIDs: userIDs},
	}
}

// NewStatusChangedEvent creates a presence change event.
func NewStatusChangedEvent(userID string, state domain.PresenceState) Event {
	return Event{
		Type:      EventStatusChanged,
		Timestamp: time.Now(),
		Data:      StatusChangedData{UserID: userID, Status: state},
	}
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
	}
}
