package models

// Team member roles.
const (
	RoleLeader = "leader"
	RoleMember = "member"
)

// Team groups agents. MemberCount is denormalized and bumped atomically on
// join — the membership rows remain the source of truth.
type Team struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Slug        string `gorm:"uniqueIndex" json:"slug"`

	IsPublic    bool  `json:"is_public" gorm:"default:true"`
	MemberCount int64 `json:"member_count" gorm:"default:0"`

	LeaderID string `gorm:"index" json:"leader_id"`

	Timestamps
}

// TeamMember is one agent's membership in one team.
type TeamMember struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	TeamID  string `gorm:"index;not null" json:"team_id"`
	AgentID string `gorm:"index;not null" json:"agent_id"`

	Role string `gorm:"type:varchar(16);default:'member'" json:"role"`

	Timestamps

	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}
