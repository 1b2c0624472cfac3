package domain

// Group is a named set of users that can be offered in pickers and mention
// autocomplete. Groups are expanded into individual users before any channel
// membership change; they are never channel members themselves.
type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name,omitempty"`
	Description string   `json:"description,omitempty"`
	Source      string   `json:"source,omitempty"` // e.g. "custom", "ldap"
	MemberIDs   []string `json:"member_ids,omitempty"`
	MemberCount int      `json:"member_count"`
	CreateAt    int64    `json:"create_at"`
	UpdateAt    int64    `json:"update_at"`
	DeleteAt    int64    `json:"delete_at"`
}

// IsActive returns true if the group has not been deleted.
func (g *Group) IsActive() bool {
	return g.DeleteAt == 0
}

// DisplayText returns the name shown for the group in pickers.
func (g *Group) DisplayText() string {
	if g.DisplayName != "" {
		return g.DisplayName
	}
	return g.Name
}
