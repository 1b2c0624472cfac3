package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{
			name: "nickname wins",
			user: User{Username: "jdoe", Nickname: "JD", FirstName: "Jane", LastName: "Doe"},
			want: "JD",
		},
		{
			name: "full name when no nickname",
			user: User{Username: "jdoe", FirstName: "Jane", LastName: "Doe"},
			want: "Jane Doe",
		},
		{
			name: "first name only",
			user: User{Username: "jdoe", FirstName: "Jane"},
			want: "Jane",
		},
		{
			name: "falls back to username",
			user: User{Username: "jdoe"},
			want: "jdoe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestUser_Roles(t *testing.T) {
	guest := User{Roles: "system_guest system_user"}
	assert.True(t, guest.IsGuest())
	assert.False(t, guest.IsSystemAdmin())

	admin := User{Roles: "system_admin system_user"}
	assert.True(t, admin.IsSystemAdmin())
	assert.False(t, admin.IsGuest())

	// Substring of another role must not match.
	odd := User{Roles: "system_guest_x"}
	assert.False(t, odd.IsGuest())
}

func TestUser_IsRemote(t *testing.T) {
	assert.False(t, (&User{}).IsRemote())

	empty := ""
	assert.False(t, (&User{RemoteID: &empty}).IsRemote())

	remote := "remote-cluster-1"
	assert.True(t, (&User{RemoteID: &remote}).IsRemote())
}

func TestUser_Sanitize(t *testing.T) {
	u := User{ID: "u1", PasswordHash: "secret"}
	clean := u.Sanitize()
	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, "u1", clean.ID)
	assert.Equal(t, "secret", u.PasswordHash, "original must be untouched")
}
