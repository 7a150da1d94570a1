package models

import (
	"time"

	"gorm.io/gorm"
)

// Agent is the profile record backing every identity, anonymous or not.
// The ID comes from the external identity provider — it is never generated
// locally, so no column default here.
type Agent struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"`
	Email        *string `gorm:"uniqueIndex" json:"email,omitempty"` // nil for anonymous agents
	Username     string  `gorm:"index;not null" json:"username"`
	DisplayName  string  `json:"display_name"`
	LocationCity *string `json:"location_city,omitempty"`

	Points int64  `json:"points" gorm:"default:0"`
	Rank   string `json:"rank" gorm:"type:varchar(32);default:'recruit'"`

	IsAnonymous bool `json:"is_anonymous" gorm:"default:false"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
