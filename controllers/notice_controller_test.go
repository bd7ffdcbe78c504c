package controllers

import (
	"net/http"
	"testing"

	"github.com/moaboard/moaboard/models"
)

func TestCreateNoticeRecordsAuthor(t *testing.T) {
	db := setupTestDB(t)
	r := authedEngine(9, "admin")
	r.POST("/notices", NewNoticeController(db).CreateNotice)

	w := doJSON(t, r, http.MethodPost, "/notices",
		`{"title":"maintenance","content":"<p>window tonight</p>","is_pinned":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var notice models.Notice
	if err := db.First(&notice).Error; err != nil {
		t.Fatalf("notice not stored: %v", err)
	}
	if notice.AuthorID != 9 {
		t.Errorf("author id = %d, want 9", notice.AuthorID)
	}
	if notice.Title != "maintenance" || !notice.IsPinned {
		t.Errorf("unexpected notice %+v", notice)
	}
}

func TestCreateNoticeRejectsEmptyTitle(t *testing.T) {
	db := setupTestDB(t)
	r := authedEngine(9, "admin")
	r.POST("/notices", NewNoticeController(db).CreateNotice)

	w := doJSON(t, r, http.MethodPost, "/notices",
		`{"title":"<b></b>","content":"body"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var count int64
	db.Model(&models.Notice{}).Count(&count)
	if count != 0 {
		t.Errorf("notice stored despite empty title")
	}
}
