package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/moaboard/moaboard/models"
	"github.com/moaboard/moaboard/utils"
)

// NotificationController serves a member's own notification feed.
type NotificationController struct {
	db *gorm.DB
}

// NewNotificationController creates a new NotificationController instance.
func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{db: db}
}

// List returns the caller's notifications, newest first.
func (n *NotificationController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40180, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := n.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if ctx.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Internal(ctx, 50120, err, "failed to count notifications")
		return
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&notifications).Error; err != nil {
		utils.Internal(ctx, 50121, err, "failed to list notifications")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      notifications,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// UnreadCount returns how many unread notifications the caller has.
func (n *NotificationController) UnreadCount(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40181, "unauthorized")
		return
	}

	var count int64
	if err := n.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		utils.Internal(ctx, 50122, err, "failed to count notifications")
		return
	}

	utils.Success(ctx, gin.H{"unread_count": count})
}

// MarkRead marks one of the caller's notifications as read.
func (n *NotificationController) MarkRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40182, "unauthorized")
		return
	}

	id := strings.TrimSpace(ctx.Param("id"))
	var notif models.Notification
	if err := n.db.First(&notif, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "notification not found")
			return
		}
		utils.Internal(ctx, 50123, err, "failed to load notification")
		return
	}
	if notif.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40330, "not your notification")
		return
	}

	if err := n.db.Model(&notif).Update("is_read", true).Error; err != nil {
		utils.Internal(ctx, 50124, err, "failed to mark notification")
		return
	}

	utils.Success(ctx, gin.H{"message": "marked read"})
}

// MarkAllRead marks every unread notification of the caller as read.
func (n *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40183, "unauthorized")
		return
	}

	res := n.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		utils.Internal(ctx, 50125, res.Error, "failed to mark notifications")
		return
	}

	utils.Success(ctx, gin.H{"marked": res.RowsAffected})
}
