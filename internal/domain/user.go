package domain

import "strings"

// Role names a user can carry. Roles are stored as a space-separated list,
// matching the wire format used by chat clients.
const (
	RoleSystemAdmin = "system_admin"
	RoleSystemUser  = "system_user"
	RoleSystemGuest = "system_guest"
)

// User represents a chat user profile. Timestamps are Unix milliseconds;
// DeleteAt == 0 means the account is active.
type User struct {
	ID                string  `json:"id"`
	Username          string  `json:"username"`
	Email             string  `json:"email"`
	Nickname          string  `json:"nickname,omitempty"`
	FirstName         string  `json:"first_name,omitempty"`
	LastName          string  `json:"last_name,omitempty"`
	Position          string  `json:"position,omitempty"`
	Roles             string  `json:"roles"`
	IsBot             bool    `json:"is_bot,omitempty"`
	PasswordHash      string  `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	CreateAt          int64   `json:"create_at"`
	UpdateAt          int64   `json:"update_at"`
	DeleteAt          int64   `json:"delete_at"`
	LastActivityAt    int64   `json:"last_activity_at,omitempty"`
	LastPictureUpdate int64   `json:"last_picture_update,omitempty"`
	AvatarBlurHash    string  `json:"avatar_blurhash,omitempty"`
	RemoteID          *string `json:"remote_id,omitempty"` // Set for users federated from another server
}

// IsActive returns true if the user has not been deactivated.
func (u *User) IsActive() bool {
	return u.DeleteAt == 0
}

// IsGuest returns true if the user carries the guest role.
func (u *User) IsGuest() bool {
	return hasRole(u.Roles, RoleSystemGuest)
}

// IsSystemAdmin returns true if the user carries the system admin role.
func (u *User) IsSystemAdmin() bool {
	return hasRole(u.Roles, RoleSystemAdmin)
}

// IsRemote returns true if the user originates from another server.
// Remote users get a "shared" badge in client profile popovers.
func (u *User) IsRemote() bool {
	return u.RemoteID != nil && *u.RemoteID != ""
}

// FullName returns "First Last", omitting whichever parts are empty.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// DisplayName returns the best available name to show for the user.
// Prefers nickname, then full name, then username.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}

// Sanitize returns a copy safe to send to clients.
func (u User) Sanitize() User {
	u.PasswordHash = ""
	return u
}

func hasRole(roles, role string) bool {
	for r := range strings.SplitSeq(roles, " ") {
		if r == role {
			return true
		}
	}
	return false
}
