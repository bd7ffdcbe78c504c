package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/moaboard/moaboard/models"
	"github.com/moaboard/moaboard/utils"
)

// NoticeController serves site announcements. Reading is public, writes are
// reserved for administrators.
type NoticeController struct {
	db *gorm.DB
}

// NewNoticeController creates a new NoticeController instance.
func NewNoticeController(db *gorm.DB) *NoticeController {
	return &NoticeController{db: db}
}

// ListNotices returns notices, pinned first, newest first.
func (c *NoticeController) ListNotices(ctx *gin.Context) {
	page, size := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := c.db.Model(&models.Notice{}).Count(&total).Error; err != nil {
		utils.Internal(ctx, 50160, err, "failed to count notices")
		return
	}

	var notices []models.Notice
	if err := c.db.Order("is_pinned DESC, created_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&notices).Error; err != nil {
		utils.Internal(ctx, 50161, err, "failed to list notices")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      notices,
		"pagination": paginationMeta(page, size, total),
	})
}

// GetNotice returns one notice and bumps its view counter.
func (c *NoticeController) GetNotice(ctx *gin.Context) {
	var notice models.Notice
	if err := c.db.First(&notice, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40490, "notice not found")
			return
		}
		utils.Internal(ctx, 50162, err, "failed to load notice")
		return
	}

	// Notice views are not deduplicated, every read counts.
	if err := c.db.Model(&models.Notice{}).Where("id = ?", notice.ID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err == nil {
		notice.Views++
	}

	utils.Success(ctx, gin.H{"notice": notice})
}

// CreateNotice publishes a new announcement.
func (c *NoticeController) CreateNotice(ctx *gin.Context) {
	var req struct {
		Title    string `json:"title" binding:"required"`
		Content  string `json:"content" binding:"required"`
		IsPinned bool   `json:"is_pinned"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40110, "title and content are required")
		return
	}

	title := utils.SanitizePlain(req.Title)
	content := utils.Sanitize(req.Content)
	if title == "" || content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40111, "title and content cannot be empty")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40190, "unauthorized")
		return
	}

	notice := models.Notice{
		AuthorID: userID,
		Title:    title,
		Content:  content,
		IsPinned: req.IsPinned,
	}
	if err := c.db.Create(&notice).Error; err != nil {
		utils.Internal(ctx, 50163, err, "failed to create notice")
		return
	}

	utils.Success(ctx, gin.H{"notice": notice})
}

// UpdateNotice edits an existing announcement.
func (c *NoticeController) UpdateNotice(ctx *gin.Context) {
	var req struct {
		Title    *string `json:"title"`
		Content  *string `json:"content"`
		IsPinned *bool   `json:"is_pinned"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40112, "invalid request payload")
		return
	}

	var notice models.Notice
	if err := c.db.First(&notice, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40491, "notice not found")
			return
		}
		utils.Internal(ctx, 50164, err, "failed to load notice")
		return
	}

	if req.Title != nil {
		title := utils.SanitizePlain(*req.Title)
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40113, "title cannot be empty")
			return
		}
		notice.Title = title
	}
	if req.Content != nil {
		content := utils.Sanitize(*req.Content)
		if content == "" {
			utils.Error(ctx, http.StatusBadRequest, 40114, "content cannot be empty")
			return
		}
		notice.Content = content
	}
	if req.IsPinned != nil {
		notice.IsPinned = *req.IsPinned
	}

	if err := c.db.Save(&notice).Error; err != nil {
		utils.Internal(ctx, 50165, err, "failed to update notice")
		return
	}

	utils.Success(ctx, gin.H{"notice": notice})
}

// DeleteNotice removes an announcement.
func (c *NoticeController) DeleteNotice(ctx *gin.Context) {
	res := c.db.Delete(&models.Notice{}, ctx.Param("id"))
	if res.Error != nil {
		utils.Internal(ctx, 50166, res.Error, "failed to delete notice")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40492, "notice not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "notice deleted"})
}
