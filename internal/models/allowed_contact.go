package models

import "gorm.io/gorm"

// AllowedContact is a directed edge: the owner permits the contact as a
// message recipient. A allowing B says nothing about B allowing A.
type AllowedContact struct {
	gorm.Model

	UserID    uint `gorm:"not null;uniqueIndex:idx_user_contact" json:"user_id"`
	ContactID uint `gorm:"not null;uniqueIndex:idx_user_contact" json:"contact_id"`

	// Relationships
	User    User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Contact User `gorm:"foreignKey:ContactID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"contact"`
}
