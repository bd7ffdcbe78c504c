package utils

import "encoding/json"

// EncodeStringList serializes a list into the JSON-array text columns used
// for post images and withdrawal reasons. An empty list encodes to "[]".
func EncodeStringList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeStringList is the inverse of EncodeStringList. Malformed input
// decodes to an empty list rather than an error; these columns are
// display-only.
func DecodeStringList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}
