package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification always names one concrete recipient. GroupID only records
// provenance when the row came out of a group fanout.
type Notification struct {
	gorm.Model

	Title   string     `gorm:"not null" json:"title"`
	Message string     `gorm:"not null" json:"message"`
	UserID  uint       `gorm:"not null;index" json:"user_id"`
	GroupID *uint      `gorm:"index" json:"group_id"`
	ReadAt  *time.Time `json:"read_at"`

	// Relationships
	User  User   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Group *Group `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"group,omitempty"`
}
