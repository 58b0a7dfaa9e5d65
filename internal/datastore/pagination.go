package datastore

import "strconv"

// ParsePage converts a raw page query parameter to a page number. Anything
// that is not a positive integer is treated as page 1, matching the
// behavior users of the history view expect from bad or missing input.
func ParsePage(raw string) int {
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// TotalPages returns the number of pages needed for total rows. An empty
// store still has one (empty) page so clamping always has a valid target.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage clamps a requested page to the valid [1, totalPages] range:
// too low serves the first page, too high serves the last.
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
