package models

import "time"

// MaxCommentLength bounds comment content after trimming.
const MaxCommentLength = 300

// DeletedCommentContent replaces the body of a soft-deleted comment.
const DeletedCommentContent = "deleted comment"

// Comment represents a reply to a post. ParentID is nil for top-level
// comments. A comment with replies is soft-deleted: the row keeps its
// identity and position in the thread but the content is replaced and
// IsDeleted set; a comment without replies is hard-deleted.
type Comment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	PostID          uint       `gorm:"index;not null" json:"post_id"`
	AuthorID        uint       `gorm:"index" json:"author_id"`
	AuthorNickname  string     `gorm:"size:64;not null" json:"author_nickname"`
	Content         string     `gorm:"size:300;not null" json:"content"`
	ParentID        *uint      `gorm:"index" json:"parent_id"`
	ReplyToNickname *string    `gorm:"size:64" json:"reply_to_nickname"`
	Likes           int64      `gorm:"not null;default:0" json:"likes"`
	IsDeleted       bool       `gorm:"default:false" json:"is_deleted"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsReply reports whether the comment is a reply to another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// SoftDelete blanks the content while keeping the row so child replies stay
// attached to a visible placeholder.
func (c *Comment) SoftDelete() {
	c.Content = DeletedCommentContent
	c.IsDeleted = true
}

// CommentLike marks that a user currently likes a comment.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;index;uniqueIndex:idx_clike_comment_user" json:"comment_id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_clike_comment_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
