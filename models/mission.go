package models

// Mission is a long-running campaign agents can join. Same lifecycle shape
// as Assignment, with a featured flag driving the front-page rotation.
type Mission struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	Title          string `gorm:"not null" json:"title"`
	Description    string `gorm:"type:text" json:"description"`
	Classification string `gorm:"index" json:"classification"`
	Slug           string `gorm:"uniqueIndex" json:"slug"`

	MemberCount int64 `json:"member_count" gorm:"default:0"`

	IsActive   bool `json:"is_active" gorm:"default:true"`
	IsFeatured bool `json:"is_featured" gorm:"default:false"`

	CreatedBy string `gorm:"index" json:"created_by"`

	Timestamps
}

// MissionProgress links one agent to one mission.
type MissionProgress struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	MissionID string `gorm:"index;not null" json:"mission_id"`
	AgentID   string `gorm:"index;not null" json:"agent_id"`

	Status string `gorm:"type:varchar(16);default:'active'" json:"status"`

	Timestamps
}
