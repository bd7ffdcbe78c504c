package models

import (
	"time"

	"gorm.io/gorm"
)

// WithdrawnNickname is written onto posts whose author removed their account.
// The denormalized author_nickname column keeps those posts readable after
// the user row is gone.
const WithdrawnNickname = "withdrawn user"

// AdminWithdrawalReason is logged when an administrator removes an account
// instead of the member themselves.
const AdminWithdrawalReason = "deleted by administrator"

// User represents a board member. Passwords are stored as bcrypt hashes only.
// Liked and bookmarked posts live in the post_likes / bookmarks join tables.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:255;index" json:"email"`
	Nickname     string     `gorm:"size:64;not null;index" json:"nickname"`
	PasswordHash string     `gorm:"size:255" json:"-"`
	Provider     string     `gorm:"size:32" json:"provider"`
	ProviderID   string     `gorm:"size:255" json:"provider_id"`
	IsAdmin      bool       `gorm:"default:false" json:"is_admin"`
	RegisterIP   string     `gorm:"size:45" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Posts        []Post     `gorm:"foreignKey:AuthorID" json:"-"`
	Comments     []Comment  `gorm:"foreignKey:AuthorID" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// WithdrawalRecord captures why an account was removed. It outlives the user
// row on purpose: the user is deleted in the same transaction that writes it.
type WithdrawalRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Email     string    `gorm:"size:255" json:"email"`
	Nickname  string    `gorm:"size:64" json:"nickname"`
	Reasons   string    `gorm:"type:text" json:"reasons"` // JSON array of reason strings
	DeletedAt time.Time `gorm:"not null" json:"deleted_at"`
}
