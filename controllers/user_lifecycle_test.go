package controllers

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/moaboard/moaboard/models"
	"github.com/moaboard/moaboard/utils"
)

func TestDeleteUserCascade(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{Nickname: "leaver", Email: "leaver@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	mine := models.Post{AuthorID: user.ID, AuthorNickname: user.Nickname, Title: "my gallery"}
	db.Create(&mine)
	other := models.Post{AuthorID: user.ID + 100, AuthorNickname: "other", Title: "their gallery", Likes: 1}
	db.Create(&other)
	db.Create(&models.PostLike{PostID: other.ID, UserID: user.ID})
	db.Create(&models.Bookmark{PostID: other.ID, UserID: user.ID})
	db.Create(&models.Comment{PostID: other.ID, AuthorID: user.ID, AuthorNickname: user.Nickname, Content: "mine too"})

	reasons := []string{"done with this", "too many ads"}
	if err := deleteUserCascade(db, &user, reasons); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	var p models.Post
	db.First(&p, mine.ID)
	if p.AuthorNickname != models.WithdrawnNickname {
		t.Errorf("own post nickname not rewritten, got %q", p.AuthorNickname)
	}
	p = models.Post{}
	db.First(&p, other.ID)
	if p.AuthorNickname != "other" {
		t.Errorf("someone else's post was rewritten to %q", p.AuthorNickname)
	}
	if p.Likes != 1 {
		t.Errorf("like counters are not compensated on deletion, got %d", p.Likes)
	}

	var rec models.WithdrawalRecord
	if err := db.Where("user_id = ?", user.ID).First(&rec).Error; err != nil {
		t.Fatalf("withdrawal record missing: %v", err)
	}
	if got := utils.DecodeStringList(rec.Reasons); len(got) != 2 || got[0] != reasons[0] {
		t.Errorf("reasons not preserved, got %v", got)
	}

	var likes, bookmarks int64
	db.Model(&models.PostLike{}).Where("user_id = ?", user.ID).Count(&likes)
	db.Model(&models.Bookmark{}).Where("user_id = ?", user.ID).Count(&bookmarks)
	if likes != 0 || bookmarks != 0 {
		t.Errorf("membership rows survived: %d likes, %d bookmarks", likes, bookmarks)
	}

	// Comments keep the nickname they carried at write time.
	var c models.Comment
	db.Where("author_id = ?", user.ID).First(&c)
	if c.AuthorNickname != "leaver" {
		t.Errorf("comment nickname rewritten to %q", c.AuthorNickname)
	}

	err := db.First(&models.User{}, user.ID).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("user row should be gone, got %v", err)
	}
}

func TestDeleteUserCascadeWithoutReasons(t *testing.T) {
	db := setupTestDB(t)

	user := models.User{Nickname: "quiet", Email: "quiet@example.com"}
	db.Create(&user)

	if err := deleteUserCascade(db, &user, nil); err != nil {
		t.Fatalf("cascade failed: %v", err)
	}

	var records int64
	db.Model(&models.WithdrawalRecord{}).Count(&records)
	if records != 0 {
		t.Errorf("no reasons given, expected no withdrawal record, got %d", records)
	}
	err := db.First(&models.User{}, user.ID).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("user row should be gone, got %v", err)
	}
}
