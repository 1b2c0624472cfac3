package domain

// ChannelType discriminates the kinds of channels.
type ChannelType string

// Channel types.
const (
	ChannelTypeOpen    ChannelType = "O"
	ChannelTypePrivate ChannelType = "P"
	ChannelTypeDirect  ChannelType = "D"
	ChannelTypeGroup   ChannelType = "G"
)

// Channel represents a conversation channel within a team.
type Channel struct {
	ID               string      `json:"id"`
	TeamID           string      `json:"team_id"`
	Type             ChannelType `json:"type"`
	Name             string      `json:"name"`
	DisplayName      string      `json:"display_name"`
	Purpose          string      `json:"purpose,omitempty"`
	CreatorID        string      `json:"creator_id,omitempty"`
	GroupConstrained bool        `json:"group_constrained,omitempty"`
	CreateAt         int64       `json:"create_at"`
	UpdateAt         int64       `json:"update_at"`
	DeleteAt         int64       `json:"delete_at"`
}

// IsActive returns true if the channel has not been archived.
func (c *Channel) IsActive() bool {
	return c.DeleteAt == 0
}

// IsDirect returns true for one-to-one and ad-hoc group conversations.
func (c *Channel) IsDirect() bool {
	return c.Type == ChannelTypeDirect || c.Type == ChannelTypeGroup
}

// Channel-scoped roles.
const (
	RoleChannelUser  = "channel_user"
	RoleChannelAdmin = "channel_admin"
)

// ChannelMember records a user's membership in a channel.
type ChannelMember struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Roles     string `json:"roles,omitempty"`
	JoinedAt  int64  `json:"joined_at"`
}
