package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/courier-dev/courier/db"
	"github.com/courier-dev/courier/internal/membership"
	"github.com/courier-dev/courier/internal/models"
	"github.com/courier-dev/courier/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

type UpdateGroupRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

type AddGroupUserRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type GroupResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Members     []types.UserResponse `json:"members"`
}

func groupResponse(group models.Group) GroupResponse {
	members := []types.UserResponse{}

	for _, m := range group.Memberships {
		members = append(members, types.UserResponse{
			ID:    m.User.ID,
			Name:  m.User.Name,
			Email: m.User.Email,
		})
	}

	return GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		Members:     members,
	}
}

func ListGroups(ctx *gin.Context) {
	var groups []models.Group

	if err := db.DB.Preload("Memberships.User").Find(&groups).Error; err != nil {
		slog.Error("Failed to list groups", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	response := []GroupResponse{}

	for _, group := range groups {
		response = append(response, groupResponse(group))
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": response})
}

func CreateGroup(ctx *gin.Context) {
	var body CreateGroupRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	group := models.Group{
		Name:        body.Name,
		Description: body.Description,
	}

	if err := db.DB.Create(&group).Error; err != nil {
		slog.Error("Failed to create group", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Group created successfully",
		"data":    groupResponse(group),
	})
}

func GetGroup(ctx *gin.Context) {
	groupID, ok := parseIDParam(ctx, "group_id")
	if !ok {
		return
	}

	var group models.Group

	if err := db.DB.Preload("Memberships.User").First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Group not found"})
			return
		}
		slog.Error("Failed to fetch group", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": groupResponse(group)})
}

func UpdateGroup(ctx *gin.Context) {
	groupID, ok := parseIDParam(ctx, "group_id")
	if !ok {
		return
	}

	var body UpdateGroupRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Invalid request"})
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

	group.Name = body.Name
	group.Description = body.Description

	if err := db.DB.Save(&group).Error; err != nil {
		slog.Error("Failed to update group", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Group updated successfully",
		"data":    groupResponse(group),
	})
}

// DeleteGroup hard-deletes so the FK cascades take memberships, messages
// and notifications with the group.
func DeleteGroup(ctx *gin.Context) {
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

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.GroupMembership{},
			&models.Message{},
			&models.Notification{},
		} {
			if err := tx.Unscoped().Where("group_id = ?", group.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&group).Error
	})

	if err != nil {
		slog.Error("Failed to delete group", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "Group deleted successfully"})
}

func AddGroupUser(ctx *gin.Context) {
	groupID, ok := parseIDParam(ctx, "group_id")
	if !ok {
		return
	}

	var body AddGroupUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Invalid request"})
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

	var user models.User

	if err := db.DB.First(&user, body.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		slog.Error("Failed to fetch user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	err := membership.NewRegistry(db.DB).Add(groupID, body.UserID)

	if err != nil {
		if errors.Is(err, membership.ErrAlreadyMember) {
			ctx.JSON(http.StatusConflict, gin.H{"success": false, "message": "User is already in this group"})
			return
		}
		slog.Error("Failed to add group member", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "User added to group successfully"})
}

func RemoveGroupUser(ctx *gin.Context) {
	groupID, ok := parseIDParam(ctx, "group_id")
	if !ok {
		return
	}

	userID, ok := parseIDParam(ctx, "user_id")
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

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		slog.Error("Failed to fetch user", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	err := membership.NewRegistry(db.DB).Remove(groupID, userID)

	if err != nil {
		if errors.Is(err, membership.ErrNotMember) {
			ctx.JSON(http.StatusConflict, gin.H{"success": false, "message": "User is not in this group"})
			return
		}
		slog.Error("Failed to remove group member", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "message": "User removed from group successfully"})
}
