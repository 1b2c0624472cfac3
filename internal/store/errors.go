package store

import "errors"

// Sentinel errors returned by store lookups.
var (
	// ErrProfileNotFound is returned when a user cannot be found by ID or username.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists is returned when creating a user whose ID already exists.
	ErrProfileExists = errors.New("profile already exists")
	// ErrUsernameExists is returned when creating a user with a taken username.
	ErrUsernameExists = errors.New("username already in use")
	// ErrEmailExists is returned when creating a user with a taken email address.
	ErrEmailExists = errors.New("email already in use")
	// ErrChannelNotFound is returned when a channel cannot be found.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrChannelExists is returned when creating a channel whose ID already exists.
	ErrChannelExists = errors.New("channel already exists")
	// ErrTeamNotFound is returned when a team cannot be found.
	ErrTeamNotFound = errors.New("team not found")
	// ErrGroupNotFound is returned when a group cannot be found.
	ErrGroupNotFound = errors.New("group not found")
	// ErrSessionNotFound is returned when a session cannot be found by ID or token.
	ErrSessionNotFound = errors.New("session not found")
)
