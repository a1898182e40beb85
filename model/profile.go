package model

import (
	"time"

	"gorm.io/datatypes"
)

// Profile is one persisted player state, stored as an opaque versioned
// JSON document under a fixed key.
type Profile struct {
	Key       string         `gorm:"column:profile_key;primaryKey;size:64" json:"key"`
	Payload   datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
