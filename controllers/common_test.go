package controllers

import "testing"

func TestParsePaginationDefaults(t *testing.T) {
	page, size := parsePagination("", "")
	if page != 1 || size != 20 {
		t.Errorf("expected defaults 1/20, got %d/%d", page, size)
	}
}

func TestParsePaginationValues(t *testing.T) {
	page, size := parsePagination("3", "50")
	if page != 3 || size != 50 {
		t.Errorf("expected 3/50, got %d/%d", page, size)
	}
}

func TestParsePaginationRejectsBadInput(t *testing.T) {
	cases := []struct {
		page, size string
	}{
		{"0", "0"},
		{"-1", "-5"},
		{"abc", "def"},
		{"2", "500"}, // size above the cap falls back to the default
	}
	for _, c := range cases {
		page, size := parsePagination(c.page, c.size)
		if page < 1 {
			t.Errorf("page %q produced %d", c.page, page)
		}
		if size < 1 || size > 100 {
			t.Errorf("size %q produced %d", c.size, size)
		}
	}
}

func TestPaginationMeta(t *testing.T) {
	meta := paginationMeta(2, 20, 41)
	if meta["total_pages"] != 3 {
		t.Errorf("expected 3 pages for 41 items of 20, got %v", meta["total_pages"])
	}
	meta = paginationMeta(1, 20, 0)
	if meta["total_pages"] != 0 {
		t.Errorf("expected 0 pages for empty set, got %v", meta["total_pages"])
	}
}

func TestValidNickname(t *testing.T) {
	good := []string{"ab", "가나다", "twenty-char-nick-aaa"}
	for _, s := range good {
		if !validNickname(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	bad := []string{"", "a", "this nickname is far too long to accept"}
	for _, s := range bad {
		if validNickname(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}
