package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Relationships
	Memberships      []GroupMembership `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	AllowedContacts  []AllowedContact  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	SentMessages     []Message         `gorm:"foreignKey:SenderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	ReceivedMessages []Message         `gorm:"foreignKey:ReceiverID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Notifications    []Notification    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
