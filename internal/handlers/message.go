package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/courier-dev/courier/db"
	"github.com/courier-dev/courier/internal/membership"
	"github.com/courier-dev/courier/internal/metrics"
	"github.com/courier-dev/courier/internal/models"
	"github.com/courier-dev/courier/internal/policy"
	"github.com/courier-dev/courier/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SendMessageRequest struct {
	Content    string `json:"content" binding:"required"`
	ReceiverID *uint  `json:"receiver_id"`
	GroupID    *uint  `json:"group_id"`
}

type UpdateMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// senderAllowList returns the contact IDs the sender has allow-listed.
func senderAllowList(senderID uint) ([]uint, error) {
	var ids []uint

	err := db.DB.Model(&models.AllowedContact{}).
		Where("user_id = ?", senderID).
		Pluck("contact_id", &ids).Error

	return ids, err
}

// canViewMessage applies the read-side visibility rule: sender, receiver,
// or current member of the addressed group. Membership is evaluated now,
// not at send time.
func canViewMessage(message models.Message, userID uint) (bool, error) {
	if message.SenderID == userID {
		return true, nil
	}

	if message.ReceiverID != nil && *message.ReceiverID == userID {
		return true, nil
	}

	if message.GroupID != nil {
		return membership.NewRegistry(db.DB).IsMember(*message.GroupID, userID)
	}

	return false, nil
}

func ListMessages(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	messages := []models.Message{}

	if err := db.DB.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Preload("Sender").Preload("Receiver").Preload("Group").
		Order("created_at desc").
		Find(&messages).Error; err != nil {
		slog.Error("Failed to list messages", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": messages})
}

func SendMessage(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var body SendMessageRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	if (body.ReceiverID == nil) == (body.GroupID == nil) {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Exactly one of receiver_id or group_id must be provided"})
		return
	}

	if body.GroupID != nil {
		var group models.Group

		if err := db.DB.First(&group, *body.GroupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Group not found"})
				return
			}
			slog.Error("Failed to fetch group", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}

		member, err := membership.NewRegistry(db.DB).IsMember(*body.GroupID, userID)

		if err != nil {
			slog.Error("Failed to check membership", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}

		if !member {
			ctx.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You are not a member of this group"})
			return
		}
	} else {
		var receiver models.User

		if err := db.DB.First(&receiver, *body.ReceiverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
				return
			}
			slog.Error("Failed to fetch receiver", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}

		allowList, err := senderAllowList(userID)

		if err != nil {
			slog.Error("Failed to load allow-list", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}

		if !policy.CanMessage(userID, *body.ReceiverID, allowList) {
			ctx.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You are not allowed to message this user"})
			return
		}
	}

	message := models.Message{
		Content:    body.Content,
		SenderID:   userID,
		ReceiverID: body.ReceiverID,
		GroupID:    body.GroupID,
	}

	if err := db.DB.Create(&message).Error; err != nil {
		slog.Error("Failed to create message", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	metrics.MessagesSent.Inc()

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "data": message})
}

func GetMessage(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	messageID, ok := parseIDParam(ctx, "message_id")
	if !ok {
		return
	}

	var message models.Message

	if err := db.DB.Preload("Sender").Preload("Receiver").Preload("Group").
		First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Message not found"})
			return
		}
		slog.Error("Failed to fetch message", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	canView, err := canViewMessage(message, userID)

	if err != nil {
		slog.Error("Failed to check message visibility", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	if !canView {
		ctx.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not have permission to view this message"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": message})
}

func UpdateMessage(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	messageID, ok := parseIDParam(ctx, "message_id")
	if !ok {
		return
	}

	var message models.Message

	if err := db.DB.First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Message not found"})
			return
		}
		slog.Error("Failed to fetch message", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	if message.SenderID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not have permission to update this message"})
		return
	}

	var body UpdateMessageRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	message.Content = body.Content

	if err := db.DB.Save(&message).Error; err != nil {
		slog.Error("Failed to update message", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Message updated successfully",
		"data":    message,
	})
}

func DeleteMessage(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	messageID, ok := parseIDParam(ctx, "message_id")
	if !ok {
		return
	}

	var message models.Message

	if err := db.DB.First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Message not found"})
			return
		}
		slog.Error("Failed to fetch message", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	if message.SenderID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not have permission to delete this message"})
		return
	}

	if err := db.DB.Unscoped().Delete(&message).Error; err != nil {
		slog.Error("Failed to delete message", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Message deleted successfully"})
}

// MarkMessageRead sets read_at once. A repeat call by the receiver succeeds
// and keeps the original timestamp.
func MarkMessageRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	messageID, ok := parseIDParam(ctx, "message_id")
	if !ok {
		return
	}

	var message models.Message

	if err := db.DB.First(&message, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Message not found"})
			return
		}
		slog.Error("Failed to fetch message", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	if message.ReceiverID == nil || *message.ReceiverID != userID {
		ctx.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You do not have permission to mark this message as read"})
		return
	}

	if message.ReadAt == nil {
		now := time.Now()
		message.ReadAt = &now

		if err := db.DB.Save(&message).Error; err != nil {
			slog.Error("Failed to mark message as read", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Message marked as read",
		"data":    message,
	})
}

// GetConversation returns the direct-message history between the caller and
// another user, oldest first.
func GetConversation(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	otherID, ok := parseIDParam(ctx, "user_id")
	if !ok {
		return
	}

	var other models.User

	if err := db.DB.First(&other, otherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		slog.Error("Failed to fetch user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	messages := []models.Message{}

	if err := db.DB.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID).
		Preload("Sender").Preload("Receiver").
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		slog.Error("Failed to fetch conversation", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": messages})
}

// GetGroupMessages is membership-gated: leaving a group removes access to
// its history, joining grants it.
func GetGroupMessages(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	groupID, ok := parseIDParam(ctx, "group_id")
	if !ok {
		return
	}

	var group models.Group

	if err := db.DB.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Group not found"})
			return
		}
		slog.Error("Failed to fetch group", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	member, err := membership.NewRegistry(db.DB).IsMember(groupID, userID)

	if err != nil {
		slog.Error("Failed to check membership", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	if !member {
		ctx.JSON(http.StatusForbidden, gin.H{"success": false, "message": "You are not a member of this group"})
		return
	}

	messages := []models.Message{}

	if err := db.DB.Where("group_id = ?", groupID).
		Preload("Sender").
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		slog.Error("Failed to fetch group messages", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": messages})
}

// GetUserGroupMessages returns messages from every group the caller
// currently belongs to, newest first.
func GetUserGroupMessages(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var groupIDs []uint

	if err := db.DB.Model(&models.GroupMembership{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &groupIDs).Error; err != nil {
		slog.Error("Failed to fetch memberships", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	messages := []models.Message{}

	if len(groupIDs) > 0 {
		if err := db.DB.Where("group_id IN ?", groupIDs).
			Preload("Sender").Preload("Group").
			Order("created_at desc").
			Find(&messages).Error; err != nil {
			slog.Error("Failed to fetch group messages", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": messages})
}
