package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/moaboard/moaboard/models"
)

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	db := setupTestDB(t)
	post := models.Post{AuthorID: 2, AuthorNickname: "author", Title: "sunset shots"}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	r := authedEngine(1, "viewer")
	r.POST("/posts/:id/like", NewEngagementController(db).ToggleLike)
	path := fmt.Sprintf("/posts/%d/like", post.ID)

	w := doJSON(t, r, "POST", path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("first toggle: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var reloaded models.Post
	db.First(&reloaded, post.ID)
	if reloaded.Likes != 1 {
		t.Errorf("expected 1 like after first toggle, got %d", reloaded.Likes)
	}
	var likeRows int64
	db.Model(&models.PostLike{}).Where("post_id = ? AND user_id = ?", post.ID, 1).Count(&likeRows)
	if likeRows != 1 {
		t.Errorf("expected one like row, got %d", likeRows)
	}

	w = doJSON(t, r, "POST", path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("second toggle: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	db.First(&reloaded, post.ID)
	if reloaded.Likes != 0 {
		t.Errorf("expected 0 likes after second toggle, got %d", reloaded.Likes)
	}
	db.Model(&models.PostLike{}).Where("post_id = ? AND user_id = ?", post.ID, 1).Count(&likeRows)
	if likeRows != 0 {
		t.Errorf("expected like row removed, got %d", likeRows)
	}
}

func TestToggleLikeNotifiesAuthorOnlyOnLike(t *testing.T) {
	db := setupTestDB(t)
	post := models.Post{AuthorID: 2, AuthorNickname: "author", Title: "city walk"}
	db.Create(&post)

	r := authedEngine(1, "viewer")
	r.POST("/posts/:id/like", NewEngagementController(db).ToggleLike)
	path := fmt.Sprintf("/posts/%d/like", post.ID)

	doJSON(t, r, "POST", path, "")
	var notifs []models.Notification
	db.Find(&notifs)
	if len(notifs) != 1 {
		t.Fatalf("expected one notification after like, got %d", len(notifs))
	}
	if notifs[0].UserID != 2 || notifs[0].Type != models.NotificationTypeLike {
		t.Errorf("notification misaddressed: %+v", notifs[0])
	}

	// Unliking must not fan out anything further.
	doJSON(t, r, "POST", path, "")
	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 1 {
		t.Errorf("unlike created a notification, total %d", count)
	}
}

func TestToggleLikeOwnPostNoNotification(t *testing.T) {
	db := setupTestDB(t)
	post := models.Post{AuthorID: 1, AuthorNickname: "self", Title: "my upload"}
	db.Create(&post)

	r := authedEngine(1, "self")
	r.POST("/posts/:id/like", NewEngagementController(db).ToggleLike)

	w := doJSON(t, r, "POST", fmt.Sprintf("/posts/%d/like", post.ID), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var reloaded models.Post
	db.First(&reloaded, post.ID)
	if reloaded.Likes != 1 {
		t.Errorf("self-like must still count, got %d", reloaded.Likes)
	}
	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 0 {
		t.Errorf("self-like must not notify, got %d notifications", count)
	}
}

func TestIncrementViewDedupeWindow(t *testing.T) {
	db := setupTestDB(t)
	post := models.Post{AuthorID: 2, AuthorNickname: "author", Title: "gallery"}
	db.Create(&post)

	r := authedEngine(1, "viewer")
	r.POST("/posts/:id/view", NewEngagementController(db).IncrementView)
	path := fmt.Sprintf("/posts/%d/view", post.ID)

	w := doJSON(t, r, "POST", path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("first view: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !viewCounted(t, w.Body.Bytes()) {
		t.Errorf("first view must count")
	}

	// Second view inside the window is deduplicated.
	w = doJSON(t, r, "POST", path, "")
	if viewCounted(t, w.Body.Bytes()) {
		t.Errorf("view inside the dedupe window must not count")
	}
	var reloaded models.Post
	db.First(&reloaded, post.ID)
	if reloaded.Views != 1 {
		t.Errorf("expected 1 view, got %d", reloaded.Views)
	}

	// Age the mark past the window; the next view counts again.
	db.Model(&models.PostViewMark{}).
		Where("post_id = ? AND user_id = ?", post.ID, 1).
		Update("last_viewed", time.Now().Add(-2*time.Hour))

	w = doJSON(t, r, "POST", path, "")
	if !viewCounted(t, w.Body.Bytes()) {
		t.Errorf("view outside the dedupe window must count")
	}
	db.First(&reloaded, post.ID)
	if reloaded.Views != 2 {
		t.Errorf("expected 2 views, got %d", reloaded.Views)
	}
}

func viewCounted(t *testing.T, body []byte) bool {
	t.Helper()
	var resp struct {
		Data struct {
			Counted bool `json:"counted"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return resp.Data.Counted
}
