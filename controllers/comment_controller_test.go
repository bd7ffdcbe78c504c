package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/moaboard/moaboard/models"
)

func TestAddCommentQuotaBoundary(t *testing.T) {
	db := setupTestDB(t)
	user := models.User{Nickname: "writer", Email: "writer@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	post := models.Post{AuthorID: user.ID + 100, AuthorNickname: "author", Title: "thread"}
	db.Create(&post)

	// Four recent comments: the next one is still within quota.
	for i := 0; i < 4; i++ {
		db.Create(&models.Comment{
			PostID: post.ID, AuthorID: user.ID, AuthorNickname: user.Nickname,
			Content: fmt.Sprintf("comment %d", i),
		})
	}

	r := authedEngine(user.ID, user.Nickname)
	r.POST("/posts/:id/comments", NewCommentController(db).AddComment)
	path := fmt.Sprintf("/posts/%d/comments", post.ID)

	w := doJSON(t, r, "POST", path, `{"content":"fifth within the window"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("fifth comment must pass, got %d: %s", w.Code, w.Body.String())
	}
	var reloaded models.Post
	db.First(&reloaded, post.ID)
	if reloaded.CommentCount != 1 {
		t.Errorf("expected comment_count 1, got %d", reloaded.CommentCount)
	}

	// Five recent comments now; the sixth trips the quota before any write.
	w = doJSON(t, r, "POST", path, `{"content":"sixth within the window"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("sixth comment must be throttled, got %d: %s", w.Code, w.Body.String())
	}
	var total int64
	db.Model(&models.Comment{}).Count(&total)
	if total != 5 {
		t.Errorf("throttled request must not write, got %d comments", total)
	}
	db.First(&reloaded, post.ID)
	if reloaded.CommentCount != 1 {
		t.Errorf("throttled request must not bump comment_count, got %d", reloaded.CommentCount)
	}
}

func TestAddCommentRejectsOverlongContent(t *testing.T) {
	db := setupTestDB(t)
	user := models.User{Nickname: "writer", Email: "writer@example.com"}
	db.Create(&user)
	post := models.Post{AuthorID: user.ID + 100, AuthorNickname: "author", Title: "thread"}
	db.Create(&post)

	r := authedEngine(user.ID, user.Nickname)
	r.POST("/posts/:id/comments", NewCommentController(db).AddComment)

	body := fmt.Sprintf(`{"content":%q}`, strings.Repeat("글", models.MaxCommentLength+1))
	w := doJSON(t, r, "POST", fmt.Sprintf("/posts/%d/comments", post.ID), body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("overlong comment must be rejected, got %d", w.Code)
	}
	var total int64
	db.Model(&models.Comment{}).Count(&total)
	if total != 0 {
		t.Errorf("rejected comment must not be stored, got %d rows", total)
	}
}

func TestAddCommentRejectsWhitespaceOnly(t *testing.T) {
	db := setupTestDB(t)
	user := models.User{Nickname: "writer", Email: "writer@example.com"}
	db.Create(&user)
	post := models.Post{AuthorID: user.ID + 100, AuthorNickname: "author", Title: "thread"}
	db.Create(&post)

	r := authedEngine(user.ID, user.Nickname)
	r.POST("/posts/:id/comments", NewCommentController(db).AddComment)

	w := doJSON(t, r, "POST", fmt.Sprintf("/posts/%d/comments", post.ID), `{"content":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("whitespace-only comment must be rejected, got %d", w.Code)
	}
}

func TestAddCommentNotifiesPostAuthor(t *testing.T) {
	db := setupTestDB(t)
	author := models.User{Nickname: "author", Email: "author@example.com"}
	db.Create(&author)
	writer := models.User{Nickname: "writer", Email: "writer@example.com"}
	db.Create(&writer)
	post := models.Post{AuthorID: author.ID, AuthorNickname: author.Nickname, Title: "thread"}
	db.Create(&post)

	r := authedEngine(writer.ID, writer.Nickname)
	r.POST("/posts/:id/comments", NewCommentController(db).AddComment)

	w := doJSON(t, r, "POST", fmt.Sprintf("/posts/%d/comments", post.ID), `{"content":"nice one"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var notif models.Notification
	if err := db.First(&notif).Error; err != nil {
		t.Fatalf("expected a notification for the post author: %v", err)
	}
	if notif.UserID != author.ID || notif.Type != models.NotificationTypeComment {
		t.Errorf("notification misaddressed: %+v", notif)
	}
	if notif.CommentContent != "nice one" {
		t.Errorf("expected preview %q, got %q", "nice one", notif.CommentContent)
	}
}
