package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PageSize is a positive number of items per page, or Unbounded.
type PageSize int

// Unbounded shows every item on a single page.
const Unbounded PageSize = 0

// DefaultPageSize is used when no preference is stored.
const DefaultPageSize PageSize = 24

// ParsePageSize parses "all" (or "0") as Unbounded and positive integers as
// a bounded size.
func ParsePageSize(s string) (PageSize, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "all" || s == "0" {
		return Unbounded, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Unbounded, fmt.Errorf("invalid page size %q", s)
	}
	return PageSize(n), nil
}

// IsUnbounded reports whether the size shows everything.
func (p PageSize) IsUnbounded() bool {
	return p <= 0
}

// String renders the size the way ParsePageSize reads it.
func (p PageSize) String() string {
	if p.IsUnbounded() {
		return "all"
	}
	return strconv.Itoa(int(p))
}

// Slice returns page (1-based) of items. Pages past the end are empty;
// callers bound navigation with PageCount.
func Slice[T any](items []T, page int, size PageSize) []T {
	if size.IsUnbounded() {
		return items
	}
	if page < 1 || page > PageCount(len(items), size) {
		return []T{}
	}
	start := (page - 1) * int(size)
	end := len(items)
	if int(size) < end-start {
		end = start + int(size)
	}
	return items[start:end]
}

// PageCount returns ceil(total/size).
func PageCount(total int, size PageSize) int {
	if total <= 0 {
		return 0
	}
	if size.IsUnbounded() {
		return 1
	}
	n := total / int(size)
	if total%int(size) != 0 {
		n++
	}
	return n
}

// ShowPagination reports whether navigation controls are needed.
func ShowPagination(total int, size PageSize) bool {
	if size.IsUnbounded() {
		return false
	}
	return total > int(size)
}
