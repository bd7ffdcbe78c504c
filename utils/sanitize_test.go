package utils

import (
	"strings"
	"testing"
)

func TestSanitizeStripsScripts(t *testing.T) {
	out := Sanitize(`<p>hello</p><script>alert(1)</script>`)
	if strings.Contains(out, "script") {
		t.Errorf("script tag survived sanitization: %q", out)
	}
	if !strings.Contains(out, "<p>hello</p>") {
		t.Errorf("formatting tag was removed: %q", out)
	}
}

func TestSanitizePlainStripsAllMarkup(t *testing.T) {
	out := SanitizePlain(`  <b>nick</b><img src=x onerror=alert(1)>  `)
	if out != "nick" {
		t.Errorf("expected %q, got %q", "nick", out)
	}
}

func TestSanitizePlainUnescapesEntities(t *testing.T) {
	out := SanitizePlain("Tom &amp; Jerry")
	if out != "Tom & Jerry" {
		t.Errorf("expected %q, got %q", "Tom & Jerry", out)
	}
}
