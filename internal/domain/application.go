package domain

import "strings"

// Column is the positional index of a cell in a spreadsheet row.
type Column int

// Fixed column layout of the submission spreadsheet.
const (
	ColTimestamp Column = iota
	ColAuthorEmail
	ColAuthorName
	ColTitle
	ColURL
	ColDescription
	ColPlatform
	ColResourceType
	ColLevel
	ColSubject
	ColKeywords
	ColLicense
	ColDeleted

	// NumColumns is the number of cells in a complete row.
	NumColumns
)

// Application is one entry of the catalog.
//
// It is built once per load cycle by Normalize and never mutated afterwards.
// Favorites, filters and shared links reference it by Key only.
type Application struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// Key is the canonical identity. It MUST be equal to URL.
	Key string `json:"key" yaml:"key"`

	// ─────────────────────────────
	// Submission
	// ─────────────────────────────

	Timestamp   string `json:"timestamp" yaml:"timestamp"`
	AuthorEmail string `json:"author_email" yaml:"author_email"`
	AuthorName  string `json:"author_name" yaml:"author_name"`
	Title       string `json:"title" yaml:"title"`
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description" yaml:"description"`

	// ─────────────────────────────
	// Classification (facets)
	// ─────────────────────────────

	Platform     string `json:"platform" yaml:"platform"`
	ResourceType string `json:"resource_type" yaml:"resource_type"`
	Level        string `json:"level" yaml:"level"`
	Subject      string `json:"subject" yaml:"subject"`
	Keywords     string `json:"keywords" yaml:"keywords"`
	License      string `json:"license" yaml:"license"`

	// Deleted is the raw deletion flag ("Sí" marks a removal request).
	Deleted string `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

// FromRow maps a raw row onto the fixed column layout.
// Every cell is trimmed and missing cells become "".
func FromRow(row []string) *Application {
	cell := func(c Column) string {
		if int(c) < len(row) {
			return strings.TrimSpace(row[c])
		}
		return ""
	}

	return &Application{
		Timestamp:    cell(ColTimestamp),
		AuthorEmail:  cell(ColAuthorEmail),
		AuthorName:   cell(ColAuthorName),
		Title:        cell(ColTitle),
		URL:          cell(ColURL),
		Description:  cell(ColDescription),
		Platform:     cell(ColPlatform),
		ResourceType: cell(ColResourceType),
		Level:        cell(ColLevel),
		Subject:      cell(ColSubject),
		Keywords:     cell(ColKeywords),
		License:      cell(ColLicense),
		Deleted:      cell(ColDeleted),
	}
}

// Fields returns all field values in column order.
func (a *Application) Fields() []string {
	return []string{
		a.Timestamp,
		a.AuthorEmail,
		a.AuthorName,
		a.Title,
		a.URL,
		a.Description,
		a.Platform,
		a.ResourceType,
		a.Level,
		a.Subject,
		a.Keywords,
		a.License,
		a.Deleted,
	}
}

// KeywordList returns the comma-separated keywords, trimmed, empties dropped.
func (a *Application) KeywordList() []string {
	return SplitList(a.Keywords)
}

// SplitList splits a comma-separated cell into trimmed, non-empty values.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
