package models

import (
	"time"
)

// Duration types recognized by the catalog filters.
const (
	DurationQuick  = "quick"
	DurationMedium = "medium"
	DurationEpic   = "epic"
)

// Location types: where the task has to happen.
const (
	LocationLocal    = "local"
	LocationVirtual  = "virtual"
	LocationRegional = "regional"
	LocationGlobal   = "global"
)

// Assignment is one catalog entry. Activity counters are only ever bumped
// with atomic column expressions — never read-modify-write.
type Assignment struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	Title          string `gorm:"not null" json:"title"`
	Description    string `gorm:"type:text" json:"description"`
	Objective      string `json:"objective"`
	Classification string `gorm:"index" json:"classification"` // e.g., "SOCIAL IMPACT", "EDUCATION"
	Duration       string `json:"duration"`                    // human label, e.g., "5 minutes"
	DurationType   string `gorm:"index;type:varchar(16)" json:"duration_type"`
	LocationType   string `gorm:"index;type:varchar(16)" json:"location_type"`

	SkillsRequired []string `gorm:"serializer:json" json:"skills_required"`

	TimesAccepted  int64 `json:"times_accepted" gorm:"default:0"`
	TimesCompleted int64 `json:"times_completed" gorm:"default:0"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	// Creator snapshot, taken at write time. Not a live reference: later
	// profile edits do not touch published assignments.
	CreatedBy         string `gorm:"index" json:"created_by"`
	CommanderName     string `json:"commander_name"`
	CommanderLocation string `json:"commander_location"`

	Timestamps
}

// Progress statuses.
const (
	ProgressAccepted  = "accepted"
	ProgressActive    = "active"
	ProgressCompleted = "completed"
)

// AssignmentProgress links one agent to one assignment. A new row is created
// on every accept — two accepts of the same assignment are two rows.
type AssignmentProgress struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	AssignmentID string `gorm:"index;not null" json:"assignment_id"`
	AgentID      string `gorm:"index;not null" json:"agent_id"`

	Status          string `gorm:"type:varchar(16);default:'accepted'" json:"status"`
	CompletionNotes string `gorm:"type:text" json:"completion_notes,omitempty"`

	AcceptedAt  time.Time  `json:"accepted_at" gorm:"autoCreateTime"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Assignment *Assignment `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
}
