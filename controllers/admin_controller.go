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

// AdminController carries the privileged user-lifecycle operations. Every
// route is behind AdminRequired, which re-reads the caller's row.
type AdminController struct {
	db *gorm.DB
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{db: db}
}

// CreateUser provisions an account on behalf of an administrator. The new
// account is always a regular member with empty engagement state.
func (a *AdminController) CreateUser(ctx *gin.Context) {
	type request struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Nickname string `json:"nickname" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "email, password and nickname are required")
		return
	}
	if len(req.Password) < utils.MinPasswordLength {
		utils.Error(ctx, http.StatusBadRequest, 40051, "password must be at least 6 characters")
		return
	}

	nickname := utils.SanitizePlain(req.Nickname)
	if !validNickname(nickname) {
		utils.Error(ctx, http.StatusBadRequest, 40052, "nickname must be 2-20 characters without markup")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := a.db.Model(&models.User{}).Where("nickname = ?", nickname).Count(&count).Error; err != nil {
		utils.Internal(ctx, 50050, err, "failed to check nickname")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40910, "nickname already in use")
		return
	}

	// An email lookup that finds nothing is the success path; anything else
	// is either a conflict or a real error.
	var existing models.User
	err := a.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		utils.Error(ctx, http.StatusConflict, 40911, "email already registered")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Internal(ctx, 50051, err, "failed to check email")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Internal(ctx, 50052, err, "failed to hash password")
		return
	}

	user := models.User{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: hash,
		IsAdmin:      false,
		RegisterIP:   ctx.ClientIP(),
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Internal(ctx, 50053, err, "failed to create user")
		return
	}

	utils.Sugar.Infof("admin created user %d (%s)", user.ID, user.Nickname)
	utils.Success(ctx, gin.H{"uid": user.ID})
}

// DeleteUser removes a member's account on behalf of an administrator. The
// withdrawal record always carries the fixed admin-initiated reason.
func (a *AdminController) DeleteUser(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		utils.Error(ctx, http.StatusBadRequest, 40060, "missing user id")
		return
	}

	var user models.User
	if err := a.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "user not found")
			return
		}
		utils.Internal(ctx, 50060, err, "failed to load user")
		return
	}

	if callerID, ok := getUserID(ctx); ok && callerID == user.ID {
		utils.Error(ctx, http.StatusBadRequest, 40061, "use account deletion for your own account")
		return
	}

	if err := deleteUserCascade(a.db, &user, []string{models.AdminWithdrawalReason}); err != nil {
		utils.Internal(ctx, 50061, err, "failed to delete user")
		return
	}

	// Best-effort; an account with no live sessions has nothing to revoke.
	if err := utils.RevokeUserSessions(user.ID); err != nil {
		utils.Sugar.Warnf("session revocation after admin deletion failed for user %d: %v", user.ID, err)
	}

	utils.MetricAccountDeleted("admin")
	utils.Sugar.Infof("admin deleted user %d (%s)", user.ID, user.Nickname)
	utils.Success(ctx, gin.H{"message": "user deleted"})
}

// ListUsers returns paginated members for the moderation table.
func (a *AdminController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))

	query := a.db.Model(&models.User{})
	if search != "" {
		query = query.Where("nickname LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Internal(ctx, 50062, err, "failed to count users")
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		utils.Internal(ctx, 50063, err, "failed to list users")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, sanitizeUserResponse(u))
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// ListWithdrawals returns withdrawal records for the retention dashboard.
func (a *AdminController) ListWithdrawals(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := a.db.Model(&models.WithdrawalRecord{}).Count(&total).Error; err != nil {
		utils.Internal(ctx, 50064, err, "failed to count withdrawals")
		return
	}

	var records []models.WithdrawalRecord
	if err := a.db.Order("deleted_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&records).Error; err != nil {
		utils.Internal(ctx, 50065, err, "failed to list withdrawals")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, r := range records {
		items = append(items, gin.H{
			"user_id":    r.UserID,
			"email":      r.Email,
			"nickname":   r.Nickname,
			"reasons":    utils.DecodeStringList(r.Reasons),
			"deleted_at": r.DeletedAt,
		})
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
