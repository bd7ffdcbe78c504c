package models

import "time"

// Post represents an image-gallery post. AuthorNickname is a denormalized
// copy maintained by explicit follow-up writes: it is rewritten whenever the
// author renames themselves and replaced with WithdrawnNickname when the
// author account is removed.
type Post struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AuthorID       uint      `gorm:"index" json:"author_id"`
	AuthorNickname string    `gorm:"size:64;not null" json:"author_nickname"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Content        string    `gorm:"type:text" json:"content"`
	Category       string    `gorm:"size:64;index" json:"category"`
	Images         string    `gorm:"type:text" json:"images"` // JSON array of image URLs
	ThumbnailURL   string    `gorm:"size:512" json:"thumbnail_url"`
	Views          int64     `gorm:"not null;default:0" json:"views"`
	Likes          int64     `gorm:"not null;default:0" json:"likes"`
	CommentCount   int64     `gorm:"not null;default:0" json:"comment_count"`
	IsPinned       bool      `gorm:"default:false;index" json:"is_pinned"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Comments       []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// PostLike marks that a user currently likes a post. Row existence is the
// liked state; toggling flips it together with posts.likes in one transaction.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_like_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_like_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark marks that a user saved a post for later.
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_bookmark_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_bookmark_post_user" json:"user_id"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"post"`
	CreatedAt time.Time `json:"created_at"`
}

// PostViewMark records the last time a user's view of a post was counted.
// A second view inside ViewDedupeWindow does not bump posts.views.
type PostViewMark struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index:idx_view_post_user,unique" json:"post_id"`
	UserID     uint      `gorm:"not null;index:idx_view_post_user,unique" json:"user_id"`
	LastViewed time.Time `gorm:"not null" json:"last_viewed"`
}

// ViewDedupeWindow suppresses duplicate view counts for a (post, user) pair.
const ViewDedupeWindow = time.Hour
