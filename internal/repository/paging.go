package repository

import "strings"

// Listing endpoints share offset pagination and a case-insensitive
// substring name filter. Page numbering starts at 0; a filter of
// "*" or "" is a wildcard that matches everything.

// nameLike converts a list filter into a LIKE pattern. The second
// return value is false for wildcard filters, meaning no name
// condition should be applied.
func nameLike(filter string) (string, bool) {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == "*" {
		return "", false
	}
	return "%" + strings.ToLower(filter) + "%", true
}

// hasMore reports whether another page exists after the given one.
func hasMore(page, pageSize int, total int64) bool {
	return int64(page+1)*int64(pageSize) < total
}

// clampPage normalizes page and pageSize, applying the default size
// when the caller passed zero or a negative value.
func clampPage(page, pageSize, defaultSize int) (int, int) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	return page, pageSize
}
