package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrAmbiguousTarget is returned when a message does not name exactly one of
// a receiver or a group.
var ErrAmbiguousTarget = errors.New("message must target exactly one of receiver or group")

type Message struct {
	gorm.Model

	Content    string     `gorm:"not null" json:"content"`
	SenderID   uint       `gorm:"not null;index" json:"sender_id"`
	ReceiverID *uint      `gorm:"index" json:"receiver_id"`
	GroupID    *uint      `gorm:"index" json:"group_id"`
	ReadAt     *time.Time `json:"read_at"`

	// Relationships
	Sender   *User  `gorm:"foreignKey:SenderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"sender,omitempty"`
	Receiver *User  `gorm:"foreignKey:ReceiverID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"receiver,omitempty"`
	Group    *Group `gorm:"foreignKey:GroupID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"group,omitempty"`
}

// BeforeSave enforces the exactly-one-of(receiver, group) invariant at the
// store boundary, independent of request validation.
func (m *Message) BeforeSave(tx *gorm.DB) error {
	if (m.ReceiverID == nil) == (m.GroupID == nil) {
		return ErrAmbiguousTarget
	}
	return nil
}
