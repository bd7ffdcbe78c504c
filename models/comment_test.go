package models

import "testing"

func TestCommentIsReply(t *testing.T) {
	c := Comment{}
	if c.IsReply() {
		t.Errorf("top-level comment reported as reply")
	}

	parent := uint(7)
	c.ParentID = &parent
	if !c.IsReply() {
		t.Errorf("comment with parent not reported as reply")
	}
}

func TestCommentSoftDelete(t *testing.T) {
	c := Comment{Content: "original text", Likes: 3}
	c.SoftDelete()

	if c.Content != DeletedCommentContent {
		t.Errorf("expected content %q, got %q", DeletedCommentContent, c.Content)
	}
	if !c.IsDeleted {
		t.Errorf("expected IsDeleted to be set")
	}
	if c.Likes != 3 {
		t.Errorf("soft delete must not touch the like counter, got %d", c.Likes)
	}
}
