package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/moaboard/moaboard/models"
	"github.com/moaboard/moaboard/utils"
)

// EngagementController carries the like, bookmark and view-count operations.
type EngagementController struct {
	db *gorm.DB
}

// NewEngagementController creates a new EngagementController instance.
func NewEngagementController(db *gorm.DB) *EngagementController {
	return &EngagementController{db: db}
}

// ToggleLike flips the caller's like on a post: the membership row and the
// post's counter move together in one transaction, and transitioning to
// liked on someone else's post adds a notification to the same batch. This
// is a toggle, not an idempotent set; two sequential calls cancel out.
// Concurrent toggles by the same user race read-then-write; last batch wins.
func (e *EngagementController) ToggleLike(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40170, "unauthorized")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := e.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40450, "post not found")
			return
		}
		utils.Internal(ctx, 50100, err, "failed to load post")
		return
	}

	var like models.PostLike
	alreadyLiked := true
	if err := e.db.Where("post_id = ? AND user_id = ?", post.ID, userID).First(&like).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Internal(ctx, 50101, err, "failed to load like state")
			return
		}
		alreadyLiked = false
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if alreadyLiked {
			if err := tx.Delete(&like).Error; err != nil {
				return err
			}
			return tx.Model(&models.Post{}).Where("id = ?", post.ID).
				UpdateColumn("likes", gorm.Expr("likes - 1")).Error
		}

		if err := tx.Create(&models.PostLike{PostID: post.ID, UserID: userID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
			return err
		}

		if post.AuthorID != 0 && post.AuthorID != userID {
			notif := models.Notification{
				UserID:       post.AuthorID,
				FromUserID:   userID,
				FromNickname: getNickname(ctx),
				Type:         models.NotificationTypeLike,
				PostID:       post.ID,
				PostTitle:    post.Title,
			}
			if err := tx.Create(&notif).Error; err != nil {
				return err
			}
			utils.MetricNotificationCreated(string(models.NotificationTypeLike))
		}
		return nil
	})
	if err != nil {
		utils.Internal(ctx, 50102, err, "failed to toggle like")
		return
	}

	liked := !alreadyLiked
	utils.MetricLikeToggled(liked)
	utils.Success(ctx, gin.H{"liked": liked})
}

// ToggleBookmark flips the caller's bookmark on a post. Bookmarks are
// private, so there is no counter and no notification.
func (e *EngagementController) ToggleBookmark(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40171, "unauthorized")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := e.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40451, "post not found")
			return
		}
		utils.Internal(ctx, 50103, err, "failed to load post")
		return
	}

	var bookmark models.Bookmark
	if err := e.db.Where("post_id = ? AND user_id = ?", post.ID, userID).First(&bookmark).Error; err == nil {
		if err := e.db.Delete(&bookmark).Error; err != nil {
			utils.Internal(ctx, 50104, err, "failed to remove bookmark")
			return
		}
		utils.Success(ctx, gin.H{"bookmarked": false})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Internal(ctx, 50105, err, "failed to load bookmark state")
		return
	}

	if err := e.db.Create(&models.Bookmark{PostID: post.ID, UserID: userID}).Error; err != nil {
		utils.Internal(ctx, 50106, err, "failed to add bookmark")
		return
	}
	utils.Success(ctx, gin.H{"bookmarked": true})
}

// ListBookmarks returns the caller's bookmarked posts, newest bookmark first.
func (e *EngagementController) ListBookmarks(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40172, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := e.db.Model(&models.Bookmark{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Internal(ctx, 50107, err, "failed to count bookmarks")
		return
	}

	var bookmarks []models.Bookmark
	if err := e.db.Preload("Post").Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&bookmarks).Error; err != nil {
		utils.Internal(ctx, 50108, err, "failed to list bookmarks")
		return
	}

	items := make([]gin.H, 0, len(bookmarks))
	for _, b := range bookmarks {
		items = append(items, postResponse(b.Post))
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// IncrementView counts one view of a post. Authenticated viewers are
// deduplicated per (post, user) inside ViewDedupeWindow; anonymous views
// always count. Responds with whether this call actually counted.
func (e *EngagementController) IncrementView(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := e.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40452, "post not found")
			return
		}
		utils.Internal(ctx, 50109, err, "failed to load post")
		return
	}

	if userID, ok := getUserID(ctx); ok {
		var mark models.PostViewMark
		err := e.db.Where("post_id = ? AND user_id = ?", post.ID, userID).First(&mark).Error
		switch {
		case err == nil:
			if time.Since(mark.LastViewed) < models.ViewDedupeWindow {
				utils.MetricViewCounted(false)
				utils.Success(ctx, gin.H{"counted": false})
				return
			}
			if err := e.db.Model(&mark).Update("last_viewed", time.Now()).Error; err != nil {
				utils.Internal(ctx, 50110, err, "failed to record view")
				return
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Upsert absorbs the race where two first views land together.
			mark = models.PostViewMark{PostID: post.ID, UserID: userID, LastViewed: time.Now()}
			if err := e.db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"last_viewed": time.Now()}),
			}).Create(&mark).Error; err != nil {
				utils.Internal(ctx, 50111, err, "failed to record view")
				return
			}
		default:
			utils.Internal(ctx, 50112, err, "failed to load view state")
			return
		}
	}

	if err := e.db.Model(&models.Post{}).Where("id = ?", post.ID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		utils.Internal(ctx, 50113, err, "failed to count view")
		return
	}

	utils.MetricViewCounted(true)
	utils.Success(ctx, gin.H{"counted": true})
}
