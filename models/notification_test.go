package models

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncatePreviewShort(t *testing.T) {
	in := "a short comment"
	if got := TruncatePreview(in); got != in {
		t.Errorf("short content must pass through unchanged, got %q", got)
	}
}

func TestTruncatePreviewLong(t *testing.T) {
	in := strings.Repeat("x", 80)
	got := TruncatePreview(in)
	if len(got) != NotificationPreviewLength {
		t.Errorf("expected %d characters, got %d", NotificationPreviewLength, len(got))
	}
}

func TestTruncatePreviewMultibyte(t *testing.T) {
	in := strings.Repeat("가", 60)
	got := TruncatePreview(in)
	if n := utf8.RuneCountInString(got); n != NotificationPreviewLength {
		t.Errorf("expected %d runes, got %d", NotificationPreviewLength, n)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8")
	}
}

func TestTruncatePreviewExactBoundary(t *testing.T) {
	in := strings.Repeat("y", NotificationPreviewLength)
	if got := TruncatePreview(in); got != in {
		t.Errorf("content at the limit must pass through unchanged")
	}
}
