package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/courier-dev/courier/db"
	"github.com/courier-dev/courier/internal/models"
	"github.com/courier-dev/courier/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AddContactRequest struct {
	ContactID uint `json:"contact_id" binding:"required"`
}

func ListContacts(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	contacts := []models.AllowedContact{}

	if err := db.DB.Where("user_id = ?", userID).Preload("Contact").Find(&contacts).Error; err != nil {
		slog.Error("Failed to list contacts", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": contacts})
}

func AddContact(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	var body AddContactRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	var contact models.User

	if err := db.DB.First(&contact, body.ContactID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		slog.Error("Failed to fetch contact user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	var count int64

	if err := db.DB.Model(&models.AllowedContact{}).
		Where("user_id = ? AND contact_id = ?", userID, body.ContactID).
		Count(&count).Error; err != nil {
		slog.Error("Failed to check existing contact", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	if count > 0 {
		ctx.JSON(http.StatusConflict, gin.H{"success": false, "message": "Contact already added"})
		return
	}

	entry := models.AllowedContact{UserID: userID, ContactID: body.ContactID}

	if err := db.DB.Create(&entry).Error; err != nil {
		slog.Error("Failed to add contact", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "message": "Contact added successfully"})
}

func RemoveContact(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	contactID, ok := parseIDParam(ctx, "contact_id")
	if !ok {
		return
	}

	result := db.DB.Unscoped().
		Where("user_id = ? AND contact_id = ?", userID, contactID).
		Delete(&models.AllowedContact{})

	if result.Error != nil {
		slog.Error("Failed to remove contact", "error", result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Contact not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Contact removed successfully"})
}
