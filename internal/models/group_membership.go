package models

import "gorm.io/gorm"

// GroupMembership links a user to a group. The composite unique index closes
// the check-then-insert race on concurrent adds of the same pair.
type GroupMembership struct {
	gorm.Model

	UserID  uint `gorm:"not null;uniqueIndex:idx_user_group" json:"user_id"`
	GroupID uint `gorm:"not null;uniqueIndex:idx_user_group" json:"group_id"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Group Group `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
