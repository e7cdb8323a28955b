// Package membership tracks which users belong to which groups and is the
// single membership gate used by message and notification access checks.
package membership

import (
	"errors"

	"github.com/courier-dev/courier/internal/models"
	"gorm.io/gorm"
)

var (
	ErrAlreadyMember = errors.New("user is already in this group")
	ErrNotMember     = errors.New("user is not in this group")
)

type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Add inserts the (group, user) pair. Returns ErrAlreadyMember if the pair
// exists; the composite unique index backstops concurrent adds.
func (r *Registry) Add(groupID, userID uint) error {
	var count int64

	if err := r.db.Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return ErrAlreadyMember
	}

	err := r.db.Create(&models.GroupMembership{GroupID: groupID, UserID: userID}).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyMember
	}
	return err
}

// Remove deletes the (group, user) pair. Returns ErrNotMember if the pair
// is absent.
func (r *Registry) Remove(groupID, userID uint) error {
	result := r.db.Unscoped().
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMembership{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNotMember
	}

	return nil
}

// IsMember reports whether the user currently belongs to the group.
func (r *Registry) IsMember(groupID, userID uint) (bool, error) {
	var count int64

	err := r.db.Model(&models.GroupMembership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error

	return count > 0, err
}

// Members returns the group's current member IDs in join order. Callers that
// need a consistent snapshot run this inside their own transaction.
func (r *Registry) Members(groupID uint) ([]uint, error) {
	var ids []uint

	err := r.db.Model(&models.GroupMembership{}).
		Where("group_id = ?", groupID).
		Order("id").
		Pluck("user_id", &ids).Error

	return ids, err
}
