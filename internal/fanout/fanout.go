// Package fanout expands a single notification request into one persisted
// row per recipient.
package fanout

import (
	"errors"

	"github.com/courier-dev/courier/internal/membership"
	"github.com/courier-dev/courier/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrInvalidTarget means the request did not name exactly one of a user
	// or a group.
	ErrInvalidTarget = errors.New("exactly one of user_id or group_id must be provided")

	ErrGroupNotFound = errors.New("group not found")
	ErrUserNotFound  = errors.New("user not found")
)

// Target names the recipient of a notification request.
type Target struct {
	UserID  *uint
	GroupID *uint
}

func ForUser(userID uint) Target { return Target{UserID: &userID} }

func ForGroup(groupID uint) Target { return Target{GroupID: &groupID} }

type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Create validates the target and persists the notification rows. A group
// target snapshots the group's membership and writes one row per member,
// all inside a single transaction: the batch either lands whole or not at
// all, and a concurrent membership change cannot tear the snapshot.
//
// Rows are returned in membership-iteration order.
func (e *Engine) Create(title, message string, target Target) ([]models.Notification, error) {
	if (target.UserID == nil) == (target.GroupID == nil) {
		return nil, ErrInvalidTarget
	}

	if target.UserID != nil {
		return e.createForUser(title, message, *target.UserID)
	}

	return e.createForGroup(title, message, *target.GroupID)
}

func (e *Engine) createForUser(title, message string, userID uint) ([]models.Notification, error) {
	var user models.User

	if err := e.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	notification := models.Notification{
		Title:   title,
		Message: message,
		UserID:  userID,
	}

	if err := e.db.Create(&notification).Error; err != nil {
		return nil, err
	}

	return []models.Notification{notification}, nil
}

func (e *Engine) createForGroup(title, message string, groupID uint) ([]models.Notification, error) {
	notifications := []models.Notification{}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var group models.Group

		if err := tx.First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}

		members, err := membership.NewRegistry(tx).Members(groupID)
		if err != nil {
			return err
		}

		for _, memberID := range members {
			notification := models.Notification{
				Title:   title,
				Message: message,
				UserID:  memberID,
				GroupID: &group.ID,
			}

			if err := tx.Create(&notification).Error; err != nil {
				return err
			}

			notifications = append(notifications, notification)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return notifications, nil
}
