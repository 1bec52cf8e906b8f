package sheet

import "github.com/MrSnakeDoc/appshelf/internal/domain"

// Result is the outcome of mapping one feed load.
type Result struct {
	Applications []*domain.Application
	Rows         int
	// Dropped counts rows that did not become a record: deleted, invalid
	// or superseded by a later row for the same URL.
	Dropped int
}

// Mapper converts feed rows into the normalized catalog
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapApplications normalizes rows (header already removed).
func (m *Mapper) MapApplications(rows [][]string) Result {
	apps := domain.Normalize(rows)
	return Result{
		Applications: apps,
		Rows:         len(rows),
		Dropped:      len(rows) - len(apps),
	}
}
