package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/courier-dev/courier/db"
	"github.com/courier-dev/courier/internal/fanout"
	"github.com/courier-dev/courier/internal/metrics"
	"github.com/courier-dev/courier/internal/models"
	"github.com/courier-dev/courier/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateNotificationRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Message string `json:"message" binding:"required"`
	UserID  *uint  `json:"user_id"`
	GroupID *uint  `json:"group_id"`
}

type UpdateNotificationRequest struct {
	Title   string `json:"title" binding:"omitempty,max=255"`
	Message string `json:"message"`
}

type SendToGroupRequest struct {
	Title   string `json:"title" binding:"required,max=255"`
	Message string `json:"message" binding:"required"`
	GroupID uint   `json:"group_id" binding:"required"`
}

// fetchOwnNotification loads the notification and enforces the recipient
// gate shared by show, update, mark-read and delete.
func fetchOwnNotification(ctx *gin.Context) (*models.Notification, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return nil, false
	}

	notificationID, ok := parseIDParam(ctx, "notification_id")
	if !ok {
		return nil, false
	}

	var notification models.Notification

	if err := db.DB.Preload("Group").First(&notification, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Notification not found"})
			return nil, false
		}
		slog.Error("Failed to fetch notification", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return nil, false
	}

	if notification.UserID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not have permission to access this notification"})
		return nil, false
	}

	return &notification, true
}

func ListNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	notifications := []models.Notification{}

	if err := db.DB.Where("user_id = ?", userID).
		Preload("Group").
		Order("created_at desc").
		Find(&notifications).Error; err != nil {
		slog.Error("Failed to list notifications", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": notifications})
}

func CreateNotification(ctx *gin.Context) {
	var body CreateNotificationRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	created, err := fanout.NewEngine(db.DB).Create(body.Title, body.Message, fanout.Target{
		UserID:  body.UserID,
		GroupID: body.GroupID,
	})

	if err != nil {
		switch {
		case errors.Is(err, fanout.ErrInvalidTarget):
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Exactly one of user_id or group_id must be provided"})
		case errors.Is(err, fanout.ErrGroupNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Group not found"})
		case errors.Is(err, fanout.ErrUserNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		default:
			slog.Error("Failed to create notification", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		}
		return
	}

	metrics.NotificationsFannedOut.Add(float64(len(created)))

	message := "Notification created successfully"
	if body.GroupID != nil {
		message = "Notifications sent to group members successfully"
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": message,
		"data":    created,
	})
}

func GetNotification(ctx *gin.Context) {
	notification, ok := fetchOwnNotification(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": notification})
}

func UpdateNotification(ctx *gin.Context) {
	notification, ok := fetchOwnNotification(ctx)
	if !ok {
		return
	}

	var body UpdateNotificationRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	if body.Title != "" {
		notification.Title = body.Title
	}

	if body.Message != "" {
		notification.Message = body.Message
	}

	if err := db.DB.Save(notification).Error; err != nil {
		slog.Error("Failed to update notification", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification updated successfully",
		"data":    notification,
	})
}

func DeleteNotification(ctx *gin.Context) {
	notification, ok := fetchOwnNotification(ctx)
	if !ok {
		return
	}

	if err := db.DB.Unscoped().Delete(notification).Error; err != nil {
		slog.Error("Failed to delete notification", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification deleted successfully"})
}

func MarkNotificationRead(ctx *gin.Context) {
	notification, ok := fetchOwnNotification(ctx)
	if !ok {
		return
	}

	if notification.ReadAt == nil {
		now := time.Now()
		notification.ReadAt = &now

		if err := db.DB.Save(notification).Error; err != nil {
			slog.Error("Failed to mark notification as read", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification marked as read",
		"data":    notification,
	})
}

// UserNotifications only serves the caller's own listing.
func UserNotifications(ctx *gin.Context) {
	currentID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	userID, ok := parseIDParam(ctx, "user_id")
	if !ok {
		return
	}

	if userID != currentID {
		ctx.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not have permission to view these notifications"})
		return
	}

	notifications := []models.Notification{}

	if err := db.DB.Where("user_id = ?", userID).
		Preload("Group").
		Order("created_at desc").
		Find(&notifications).Error; err != nil {
		slog.Error("Failed to list notifications", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": notifications})
}

func SendToGroup(ctx *gin.Context) {
	var body SendToGroupRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	created, err := fanout.NewEngine(db.DB).Create(body.Title, body.Message, fanout.ForGroup(body.GroupID))

	if err != nil {
		if errors.Is(err, fanout.ErrGroupNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Group not found"})
			return
		}
		slog.Error("Failed to send group notification", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	metrics.NotificationsFannedOut.Add(float64(len(created)))

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Notifications sent to group members successfully",
		"data":    created,
	})
}
