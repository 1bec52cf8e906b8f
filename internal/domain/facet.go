package domain

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Facet is one of the fixed filterable attributes of an application.
type Facet string

const (
	FacetSubject  Facet = "subject"
	FacetLevel    Facet = "level"
	FacetType     Facet = "type"
	FacetPlatform Facet = "platform"
	FacetAuthor   Facet = "author"
	FacetKeyword  Facet = "keyword"
)

// Facets lists every facet in display order.
var Facets = []Facet{
	FacetSubject,
	FacetLevel,
	FacetType,
	FacetPlatform,
	FacetAuthor,
	FacetKeyword,
}

// ParseFacet returns the facet named s.
func ParseFacet(s string) (Facet, bool) {
	for _, f := range Facets {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Value returns the raw cell backing the facet.
func (f Facet) Value(app *Application) string {
	switch f {
	case FacetSubject:
		return app.Subject
	case FacetLevel:
		return app.Level
	case FacetType:
		return app.ResourceType
	case FacetPlatform:
		return app.Platform
	case FacetAuthor:
		return app.AuthorName
	case FacetKeyword:
		return app.Keywords
	default:
		return ""
	}
}

// Values returns the comma-split values of the facet for app.
func (f Facet) Values(app *Application) []string {
	return SplitList(f.Value(app))
}

// FacetOption is one selectable value of the filter panel.
type FacetOption struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// FacetOptions returns the distinct values of a facet across apps with the
// number of apps carrying each. Values equal after Fold are merged and the
// first spelling seen wins. Options are sorted with Spanish collation.
func FacetOptions(apps []*Application, facet Facet) []FacetOption {
	index := make(map[string]int)
	options := make([]FacetOption, 0)

	for _, app := range apps {
		seen := make(map[string]bool)
		for _, v := range facet.Values(app) {
			folded := Fold(v)
			if seen[folded] {
				continue
			}
			seen[folded] = true

			if i, ok := index[folded]; ok {
				options[i].Count++
				continue
			}
			index[folded] = len(options)
			options = append(options, FacetOption{Value: v, Count: 1})
		}
	}

	c := collate.New(language.Spanish, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(options, func(i, j int) bool {
		return c.CompareString(options[i].Value, options[j].Value) < 0
	})

	return options
}
