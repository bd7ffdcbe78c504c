package utils

import "testing"

func TestEncodeStringListEmpty(t *testing.T) {
	if got := EncodeStringList(nil); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}
	if got := EncodeStringList([]string{}); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}
}

func TestStringListRoundTrip(t *testing.T) {
	in := []string{"/uploads/a.jpg", "/uploads/b.png", "with \"quotes\""}
	out := DecodeStringList(EncodeStringList(in))
	if len(out) != len(in) {
		t.Fatalf("expected %d items, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("item %d: expected %q, got %q", i, in[i], out[i])
		}
	}
}

func TestDecodeStringListMalformed(t *testing.T) {
	if got := DecodeStringList("not json"); got != nil {
		t.Errorf("malformed input must decode to nil, got %v", got)
	}
	if got := DecodeStringList(""); got != nil {
		t.Errorf("empty input must decode to nil, got %v", got)
	}
}
