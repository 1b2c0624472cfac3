package domain

// Team is a workspace grouping channels and members.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	CreateAt    int64  `json:"create_at"`
	UpdateAt    int64  `json:"update_at"`
	DeleteAt    int64  `json:"delete_at"`
}

// Team-scoped roles.
const (
	RoleTeamUser  = "team_user"
	RoleTeamAdmin = "team_admin"
)

// TeamMember records a user's membership in a team.
// DeleteAt != 0 means the user has left or been removed from the team.
type TeamMember struct {
	TeamID   string `json:"team_id"`
	UserID   string `json:"user_id"`
	Roles    string `json:"roles,omitempty"`
	CreateAt int64  `json:"create_at"`
	DeleteAt int64  `json:"delete_at"`
}

// IsActive returns true if the membership has not been revoked.
func (m *TeamMember) IsActive() bool {
	return m.DeleteAt == 0
}

// TeamStats summarizes team membership counts for invite flows.
type TeamStats struct {
	TeamID            string `json:"team_id"`
	TotalMemberCount  int    `json:"total_member_count"`
	ActiveMemberCount int    `json:"active_member_count"`
}
