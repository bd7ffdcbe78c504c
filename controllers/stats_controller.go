package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/moaboard/moaboard/models"
	"github.com/moaboard/moaboard/utils"
)

// StatsController provides board statistics such as counts and daily activity.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate public statistics for the board.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var postCount int64
	var commentCount int64
	var todayPostCount int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.Post{}).Count(&postCount).Error; err != nil {
		postCount = 0
	}

	if err := s.db.Model(&models.Comment{}).Where("is_deleted = ?", false).
		Count(&commentCount).Error; err != nil {
		commentCount = 0
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := s.db.Model(&models.Post{}).Where("created_at >= ?", midnight).
		Count(&todayPostCount).Error; err != nil {
		todayPostCount = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":       userCount,
		"post_count":       postCount,
		"comment_count":    commentCount,
		"today_post_count": todayPostCount,
	})
}

// GetAdminStats returns the counters backing the admin dashboard, including
// work that needs attention.
func (s *StatsController) GetAdminStats(ctx *gin.Context) {
	var pendingReports int64
	var withdrawnCount int64
	var noticeCount int64
	var categoryCount int64

	if err := s.db.Model(&models.Report{}).
		Where("status = ?", models.ReportStatusPending).
		Count(&pendingReports).Error; err != nil {
		pendingReports = 0
	}

	if err := s.db.Model(&models.WithdrawalRecord{}).Count(&withdrawnCount).Error; err != nil {
		withdrawnCount = 0
	}

	if err := s.db.Model(&models.Notice{}).Count(&noticeCount).Error; err != nil {
		noticeCount = 0
	}

	if err := s.db.Model(&models.Category{}).Count(&categoryCount).Error; err != nil {
		categoryCount = 0
	}

	utils.Success(ctx, gin.H{
		"pending_report_count": pendingReports,
		"withdrawn_user_count": withdrawnCount,
		"notice_count":         noticeCount,
		"category_count":       categoryCount,
	})
}
