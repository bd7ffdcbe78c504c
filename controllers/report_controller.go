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

// ReportController handles member reports and their moderation.
type ReportController struct {
	db *gorm.DB
}

// NewReportController creates a new ReportController instance.
func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{db: db}
}

// CreateReport files a report against a post. One report per (post,
// reporter) pair, enforced by a pre-check query.
func (r *ReportController) CreateReport(ctx *gin.Context) {
	var req struct {
		Reason     string `json:"reason" binding:"required"`
		EtcContent string `json:"etc_content"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40090, "reason is required")
		return
	}

	reason := utils.SanitizePlain(req.Reason)
	if reason == "" {
		utils.Error(ctx, http.StatusBadRequest, 40091, "reason cannot be empty")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40190, "unauthorized")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := r.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40470, "post not found")
			return
		}
		utils.Internal(ctx, 50130, err, "failed to load post")
		return
	}

	var existing int64
	if err := r.db.Model(&models.Report{}).
		Where("post_id = ? AND reporter_id = ?", post.ID, userID).
		Count(&existing).Error; err != nil {
		utils.Internal(ctx, 50131, err, "failed to check prior reports")
		return
	}
	if existing > 0 {
		utils.Error(ctx, http.StatusConflict, 40920, "you already reported this post")
		return
	}

	report := models.Report{
		PostID:           post.ID,
		PostTitle:        post.Title,
		ReporterID:       userID,
		ReporterNickname: getNickname(ctx),
		Reason:           reason,
		EtcContent:       utils.SanitizePlain(req.EtcContent),
		Status:           models.ReportStatusPending,
	}
	if err := r.db.Create(&report).Error; err != nil {
		utils.Internal(ctx, 50132, err, "failed to create report")
		return
	}

	utils.Sugar.Infow("post reported",
		"post_id", post.ID, "reporter_id", userID, "reason", reason)
	utils.Success(ctx, gin.H{"report_id": report.ID})
}

// ListReports returns reports for the moderation queue, optionally filtered
// by status. Admin only.
func (r *ReportController) ListReports(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := r.db.Model(&models.Report{})
	if status := models.ReportStatus(strings.TrimSpace(ctx.Query("status"))); status != "" {
		if !models.ValidReportStatus(status) {
			utils.Error(ctx, http.StatusBadRequest, 40092, "unknown report status")
			return
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Internal(ctx, 50133, err, "failed to count reports")
		return
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&reports).Error; err != nil {
		utils.Internal(ctx, 50134, err, "failed to list reports")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      reports,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// UpdateReportStatus moves a report through the moderation workflow. Admin only.
func (r *ReportController) UpdateReportStatus(ctx *gin.Context) {
	var req struct {
		Status models.ReportStatus `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40093, "status is required")
		return
	}
	if !models.ValidReportStatus(req.Status) {
		utils.Error(ctx, http.StatusBadRequest, 40094, "unknown report status")
		return
	}

	id := ctx.Param("id")
	res := r.db.Model(&models.Report{}).Where("id = ?", id).Update("status", req.Status)
	if res.Error != nil {
		utils.Internal(ctx, 50135, res.Error, "failed to update report")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40471, "report not found")
		return
	}

	utils.Success(ctx, gin.H{"status": req.Status})
}
