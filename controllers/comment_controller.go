package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/moaboard/moaboard/models"
	"github.com/moaboard/moaboard/utils"
)

// Writing more than this many comments inside the trailing window trips the
// quota check before anything is written.
const (
	commentRateLimitWindow = time.Minute
	commentRateLimitMax    = 5
)

// CommentController manages comments and their replies.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// AddComment creates a comment or reply. The comment row, the notification
// fan-out and the post's comment counter all land in one transaction; the
// parent-comment lookup for the second notification is best-effort and never
// blocks the comment itself.
func (c *CommentController) AddComment(ctx *gin.Context) {
	var req struct {
		Content         string  `json:"content"`
		ParentID        *uint   `json:"parent_id"`
		ReplyToNickname *string `json:"reply_to_nickname"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	postID := strings.TrimSpace(ctx.Param("id"))
	if postID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40081, "missing post id")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40082, "comment cannot be empty")
		return
	}
	if len([]rune(content)) > models.MaxCommentLength {
		utils.Error(ctx, http.StatusBadRequest, 40083, "comment exceeds 300 characters")
		return
	}
	content = utils.SanitizePlain(content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40082, "comment cannot be empty")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40160, "unauthorized")
		return
	}

	// Quota check happens before any write. Counted against the database, so
	// two concurrent requests can both pass; accepted.
	var recent int64
	if err := c.db.Model(&models.Comment{}).
		Where("author_id = ? AND created_at > ?", userID, time.Now().Add(-commentRateLimitWindow)).
		Count(&recent).Error; err != nil {
		utils.Internal(ctx, 50080, err, "failed to count recent comments")
		return
	}
	if recent >= commentRateLimitMax {
		utils.MetricRateLimitHit("comment")
		utils.Error(ctx, http.StatusTooManyRequests, 42940, "too many comments, try again in a minute")
		return
	}

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "user not found")
			return
		}
		utils.Internal(ctx, 50081, err, "failed to load user")
		return
	}

	var post models.Post
	if err := c.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40441, "post not found")
			return
		}
		utils.Internal(ctx, 50082, err, "failed to load post")
		return
	}

	comment := models.Comment{
		PostID:          post.ID,
		AuthorID:        user.ID,
		AuthorNickname:  user.Nickname,
		Content:         content,
		ParentID:        req.ParentID,
		ReplyToNickname: req.ReplyToNickname,
	}

	notifType := models.NotificationTypeComment
	if req.ParentID != nil {
		notifType = models.NotificationTypeReply
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		preview := models.TruncatePreview(content)

		if post.AuthorID != 0 && post.AuthorID != user.ID {
			notif := models.Notification{
				UserID:         post.AuthorID,
				FromUserID:     user.ID,
				FromNickname:   user.Nickname,
				Type:           notifType,
				PostID:         post.ID,
				PostTitle:      post.Title,
				CommentContent: preview,
			}
			if err := tx.Create(&notif).Error; err != nil {
				return err
			}
			utils.MetricNotificationCreated(string(notifType))
		}

		if req.ParentID != nil {
			var parent models.Comment
			// Best-effort: a missing or unreadable parent never blocks the comment.
			if err := tx.First(&parent, *req.ParentID).Error; err == nil {
				if parent.AuthorID != 0 && parent.AuthorID != user.ID && parent.AuthorID != post.AuthorID {
					notif := models.Notification{
						UserID:         parent.AuthorID,
						FromUserID:     user.ID,
						FromNickname:   user.Nickname,
						Type:           models.NotificationTypeReply,
						PostID:         post.ID,
						PostTitle:      post.Title,
						CommentContent: preview,
					}
					if err := tx.Create(&notif).Error; err != nil {
						return err
					}
					utils.MetricNotificationCreated(string(models.NotificationTypeReply))
				}
			}
		}

		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		utils.Internal(ctx, 50083, err, "failed to create comment")
		return
	}

	if req.ParentID != nil {
		utils.MetricCommentCreated("reply")
	} else {
		utils.MetricCommentCreated("comment")
	}

	utils.Success(ctx, gin.H{"comment_id": comment.ID})
}

// ListComments returns the comments of a post in thread order: top-level
// comments by age with their replies grouped underneath on the client.
func (c *CommentController) ListComments(ctx *gin.Context) {
	postID := ctx.Param("id")
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := c.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&total).Error; err != nil {
		utils.Internal(ctx, 50084, err, "failed to count comments")
		return
	}

	var comments []models.Comment
	if err := c.db.Where("post_id = ?", postID).
		Order("created_at ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&comments).Error; err != nil {
		utils.Internal(ctx, 50085, err, "failed to list comments")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      comments,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// DeleteComment removes a comment. While replies still reference it, the row
// survives as a placeholder with the content blanked; without replies it is
// removed outright and the post's counter decremented.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	commentID := strings.TrimSpace(ctx.Param("commentId"))
	if commentID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40084, "missing comment id")
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40442, "comment not found")
			return
		}
		utils.Internal(ctx, 50086, err, "failed to load comment")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40161, "unauthorized")
		return
	}
	if comment.AuthorID != userID && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40320, "you can only delete your own comment")
		return
	}

	var replies int64
	if err := c.db.Model(&models.Comment{}).Where("parent_id = ?", comment.ID).Count(&replies).Error; err != nil {
		utils.Internal(ctx, 50087, err, "failed to count replies")
		return
	}

	if replies > 0 {
		comment.SoftDelete()
		if err := c.db.Save(&comment).Error; err != nil {
			utils.Internal(ctx, 50088, err, "failed to delete comment")
			return
		}
		utils.Success(ctx, gin.H{"message": "comment deleted", "soft": true})
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
	if err != nil {
		utils.Internal(ctx, 50089, err, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted", "soft": false})
}

// ToggleCommentLike flips the caller's like on a comment. Same shape as the
// post toggle but without notification fan-out.
func (c *CommentController) ToggleCommentLike(ctx *gin.Context) {
	commentID := strings.TrimSpace(ctx.Param("commentId"))
	if commentID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40085, "missing comment id")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40162, "unauthorized")
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40443, "comment not found")
			return
		}
		utils.Internal(ctx, 50090, err, "failed to load comment")
		return
	}

	var like models.CommentLike
	alreadyLiked := true
	if err := c.db.Where("comment_id = ? AND user_id = ?", comment.ID, userID).First(&like).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Internal(ctx, 50091, err, "failed to load like state")
			return
		}
		alreadyLiked = false
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if alreadyLiked {
			if err := tx.Delete(&like).Error; err != nil {
				return err
			}
			return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
				UpdateColumn("likes", gorm.Expr("likes - 1")).Error
		}
		if err := tx.Create(&models.CommentLike{CommentID: comment.ID, UserID: userID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
			UpdateColumn("likes", gorm.Expr("likes + 1")).Error
	})
	if err != nil {
		utils.Internal(ctx, 50092, err, "failed to toggle like")
		return
	}

	utils.Success(ctx, gin.H{"liked": !alreadyLiked})
}
