package audit

import "strings"

// User ID lists are stored as a comma-joined string. IDs are nanoid-style
// and never contain commas.

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
