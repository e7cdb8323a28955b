package models

import "gorm.io/gorm"

type Group struct {
	gorm.Model

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	// Relationships
	Memberships   []GroupMembership `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Messages      []Message         `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Notifications []Notification    `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
