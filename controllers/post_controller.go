package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/moaboard/moaboard/models"
	"github.com/moaboard/moaboard/utils"
)

// Creating more than this many posts inside the trailing window trips the
// quota check. Counted against the database, so concurrent requests can
// exceed it by a small margin; accepted.
const (
	postRateLimitWindow = time.Minute
	postRateLimitMax    = 3
)

// PostController manages gallery posts.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// CheckRateLimit reports whether the caller may create another post. It only
// checks and reports; the creation path performs its own count.
func (p *PostController) CheckRateLimit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40150, "unauthorized")
		return
	}

	count, err := p.recentPostCount(userID)
	if err != nil {
		utils.Internal(ctx, 50020, err, "failed to count recent posts")
		return
	}
	if count >= postRateLimitMax {
		utils.MetricRateLimitHit("post")
		utils.Error(ctx, http.StatusTooManyRequests, 42930, "too many posts, try again in a minute")
		return
	}

	utils.Success(ctx, gin.H{"allowed": true})
}

// CreatePost allows authenticated users to publish a gallery post.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title        string   `json:"title" binding:"required,min=1"`
		Content      string   `json:"content"`
		Category     string   `json:"category"`
		Images       []string `json:"images"`
		ThumbnailURL string   `json:"thumbnail_url"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	title := utils.SanitizePlain(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40071, "title cannot be empty")
		return
	}
	content := utils.Sanitize(req.Content)

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40151, "unauthorized")
		return
	}

	count, err := p.recentPostCount(userID)
	if err != nil {
		utils.Internal(ctx, 50021, err, "failed to count recent posts")
		return
	}
	if count >= postRateLimitMax {
		utils.MetricRateLimitHit("post")
		utils.Error(ctx, http.StatusTooManyRequests, 42930, "too many posts, try again in a minute")
		return
	}

	var user models.User
	if err := p.db.First(&user, userID).Error; err != nil {
		utils.Internal(ctx, 50022, err, "failed to load user")
		return
	}

	category, err := p.resolveCategory(req.Category)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40072, "invalid category")
		return
	}

	thumbnail := strings.TrimSpace(req.ThumbnailURL)
	if thumbnail == "" && len(req.Images) > 0 {
		thumbnail = req.Images[0]
	}

	post := models.Post{
		AuthorID:       user.ID,
		AuthorNickname: user.Nickname,
		Title:          title,
		Content:        content,
		Category:       category.Name,
		Images:         utils.EncodeStringList(req.Images),
		ThumbnailURL:   thumbnail,
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		// Follow-up write keeping the denormalized category counter current.
		return tx.Model(&models.Category{}).Where("id = ?", category.ID).
			UpdateColumn("post_count", gorm.Expr("post_count + 1")).Error
	})
	if err != nil {
		utils.Internal(ctx, 50023, err, "failed to create post")
		return
	}

	utils.CacheDropPrefix("cache:posts:list:")

	utils.Success(ctx, gin.H{"post": postResponse(post)})
}

// ListPosts returns paginated posts, pinned first, with optional category
// filter and title/content search.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))
	category := strings.TrimSpace(ctx.Query("category"))

	// Cache category/home pages only; search terms would explode the key space.
	cacheKey := ""
	if search == "" {
		cacheKey = fmt.Sprintf("cache:posts:list:cat=%s:page=%d:size=%d", category, page, pageSize)
		if b, ok := utils.CacheFetch(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	query := p.db.Model(&models.Post{})
	if search != "" {
		query = query.Where("title LIKE ? OR content LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Internal(ctx, 50024, err, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := query.Order("is_pinned DESC, created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Internal(ctx, 50025, err, "failed to list posts")
		return
	}

	items := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		items = append(items, postResponse(post))
	}

	payload := gin.H{
		"items":      items,
		"pagination": paginationMeta(page, pageSize, total),
	}

	if cacheKey != "" {
		wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
		utils.CacheStoreJSON(cacheKey, wrapper, 5*time.Minute)
	}
	utils.Success(ctx, payload)
}

// GetPost returns a single post. View counting is a separate call so the
// client controls when a view is recorded.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "post not found")
			return
		}
		utils.Internal(ctx, 50026, err, "failed to load post")
		return
	}

	resp := postResponse(post)
	if userID, ok := getUserID(ctx); ok {
		var liked, bookmarked int64
		if err := p.db.Model(&models.PostLike{}).Where("post_id = ? AND user_id = ?", post.ID, userID).Count(&liked).Error; err != nil {
			utils.Internal(ctx, 50034, err, "failed to load like state")
			return
		}
		if err := p.db.Model(&models.Bookmark{}).Where("post_id = ? AND user_id = ?", post.ID, userID).Count(&bookmarked).Error; err != nil {
			utils.Internal(ctx, 50035, err, "failed to load bookmark state")
			return
		}
		resp["liked"] = liked > 0
		resp["bookmarked"] = bookmarked > 0
	}

	utils.Success(ctx, gin.H{"post": resp})
}

// UpdatePost allows the author to edit their post.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Title        string   `json:"title" binding:"required,min=1"`
		Content      string   `json:"content"`
		Category     string   `json:"category"`
		Images       []string `json:"images"`
		ThumbnailURL string   `json:"thumbnail_url"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40073, "invalid request payload")
		return
	}

	title := utils.SanitizePlain(req.Title)
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40074, "title cannot be empty")
		return
	}

	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40431, "post not found")
			return
		}
		utils.Internal(ctx, 50027, err, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40152, "unauthorized")
		return
	}
	if post.AuthorID != userID {
		utils.Error(ctx, http.StatusForbidden, 40310, "you can only update your own posts")
		return
	}

	category, err := p.resolveCategory(req.Category)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40075, "invalid category")
		return
	}
	oldCategory := post.Category

	thumbnail := strings.TrimSpace(req.ThumbnailURL)
	if thumbnail == "" && len(req.Images) > 0 {
		thumbnail = req.Images[0]
	}

	post.Title = title
	post.Content = utils.Sanitize(req.Content)
	post.Category = category.Name
	post.Images = utils.EncodeStringList(req.Images)
	post.ThumbnailURL = thumbnail

	err = p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&post).Error; err != nil {
			return err
		}
		if oldCategory != category.Name {
			if err := tx.Model(&models.Category{}).Where("name = ?", oldCategory).
				UpdateColumn("post_count", gorm.Expr("post_count - 1")).Error; err != nil {
				return err
			}
			return tx.Model(&models.Category{}).Where("id = ?", category.ID).
				UpdateColumn("post_count", gorm.Expr("post_count + 1")).Error
		}
		return nil
	})
	if err != nil {
		utils.Internal(ctx, 50028, err, "failed to update post")
		return
	}

	utils.CacheDropPrefix("cache:posts:list:")

	utils.Success(ctx, gin.H{"post": postResponse(post)})
}

// DeletePost removes a post along with its comments and engagement rows.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID := ctx.Param("id")
	var post models.Post
	if err := p.db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40432, "post not found")
			return
		}
		utils.Internal(ctx, 50029, err, "failed to load post")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40153, "unauthorized")
		return
	}
	if post.AuthorID != userID && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40311, "you can only delete your own posts")
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Bookmark{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostViewMark{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Category{}).Where("name = ?", post.Category).
			UpdateColumn("post_count", gorm.Expr("post_count - 1")).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		utils.Internal(ctx, 50030, err, "failed to delete post")
		return
	}

	utils.CacheDropPrefix("cache:posts:list:")

	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// SetPinned toggles the admin pin flag on a post. The at-most-three-pins
// policy lives in the admin client; the server records the flag only.
func (p *PostController) SetPinned(ctx *gin.Context) {
	var req struct {
		Pinned *bool `json:"pinned" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40076, "pinned flag is required")
		return
	}

	postID := ctx.Param("id")
	res := p.db.Model(&models.Post{}).Where("id = ?", postID).Update("is_pinned", *req.Pinned)
	if res.Error != nil {
		utils.Internal(ctx, 50031, res.Error, "failed to update pin flag")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40433, "post not found")
		return
	}

	utils.CacheDropPrefix("cache:posts:list:")
	utils.Success(ctx, gin.H{"pinned": *req.Pinned})
}

// ListUserPosts returns posts authored by one member.
func (p *PostController) ListUserPosts(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	authorID := ctx.Param("id")

	query := p.db.Model(&models.Post{}).Where("author_id = ?", authorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Internal(ctx, 50032, err, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts).Error; err != nil {
		utils.Internal(ctx, 50033, err, "failed to list posts")
		return
	}

	items := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		items = append(items, postResponse(post))
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

func (p *PostController) recentPostCount(userID uint) (int64, error) {
	var count int64
	err := p.db.Model(&models.Post{}).
		Where("author_id = ? AND created_at > ?", userID, time.Now().Add(-postRateLimitWindow)).
		Count(&count).Error
	return count, err
}

// resolveCategory maps a requested category name to an existing row, falling
// back to the default category when none was given.
func (p *PostController) resolveCategory(name string) (*models.Category, error) {
	var category models.Category
	name = strings.TrimSpace(name)
	if name == "" {
		if err := p.db.Where("is_default = ?", true).First(&category).Error; err != nil {
			return nil, err
		}
		return &category, nil
	}
	if err := p.db.Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func postResponse(post models.Post) gin.H {
	return gin.H{
		"id":              post.ID,
		"author_id":       post.AuthorID,
		"author_nickname": post.AuthorNickname,
		"title":           post.Title,
		"content":         post.Content,
		"category":        post.Category,
		"images":          utils.DecodeStringList(post.Images),
		"thumbnail_url":   post.ThumbnailURL,
		"views":           post.Views,
		"likes":           post.Likes,
		"comment_count":   post.CommentCount,
		"is_pinned":       post.IsPinned,
		"created_at":      post.CreatedAt,
		"updated_at":      post.UpdatedAt,
	}
}
