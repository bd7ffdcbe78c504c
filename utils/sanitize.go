package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcSanitizer   = bluemonday.UGCPolicy()
	plainSanitizer = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks while keeping the
// formatting tags allowed in post bodies.
func Sanitize(input string) string {
	return ugcSanitizer.Sanitize(input)
}

// SanitizePlain strips all markup. Used for nicknames, titles, comment bodies
// and report reasons, which are plain text by contract.
func SanitizePlain(input string) string {
	return strings.TrimSpace(html.UnescapeString(plainSanitizer.Sanitize(input)))
}
