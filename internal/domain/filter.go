package domain

import "strings"

// FilterState holds the active search text and facet selections.
//
// Values within a facet combine with OR, facets combine with AND.
// Selections keep insertion order so encoded URLs are stable.
type FilterState struct {
	search   string
	selected map[Facet][]string
}

// NewFilterState returns an empty filter.
func NewFilterState() *FilterState {
	return &FilterState{selected: make(map[Facet][]string)}
}

// SetSearchText replaces the search text.
func (f *FilterState) SetSearchText(text string) {
	f.search = strings.TrimSpace(text)
}

// SearchText returns the active search text.
func (f *FilterState) SearchText() string {
	return f.search
}

// ToggleFacetValue selects value for facet, or deselects it when already
// selected. Comparison is fold-insensitive. Empty values are ignored.
func (f *FilterState) ToggleFacetValue(facet Facet, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}

	folded := Fold(value)
	current := f.selected[facet]
	for i, v := range current {
		if Fold(v) == folded {
			f.selected[facet] = append(current[:i:i], current[i+1:]...)
			if len(f.selected[facet]) == 0 {
				delete(f.selected, facet)
			}
			return
		}
	}
	f.selected[facet] = append(current, value)
}

// Select adds value to facet if it is not already selected.
func (f *FilterState) Select(facet Facet, value string) {
	if f.IsSelected(facet, value) {
		return
	}
	f.ToggleFacetValue(facet, value)
}

// IsSelected reports whether value is selected for facet.
func (f *FilterState) IsSelected(facet Facet, value string) bool {
	folded := Fold(value)
	for _, v := range f.selected[facet] {
		if Fold(v) == folded {
			return true
		}
	}
	return false
}

// Selected returns a copy of the selected values for facet.
func (f *FilterState) Selected(facet Facet) []string {
	vals := f.selected[facet]
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// Clear removes the search text and every selection.
func (f *FilterState) Clear() {
	f.search = ""
	f.selected = make(map[Facet][]string)
}

// IsEmpty reports whether the filter constrains nothing.
func (f *FilterState) IsEmpty() bool {
	return f.search == "" && len(f.selected) == 0
}

// Clone returns an independent copy.
func (f *FilterState) Clone() *FilterState {
	c := NewFilterState()
	c.search = f.search
	for facet, vals := range f.selected {
		c.selected[facet] = append([]string(nil), vals...)
	}
	return c
}

// Matches reports whether app satisfies the search text and every facet.
func (f *FilterState) Matches(app *Application) bool {
	if f.search != "" {
		haystack := Fold(strings.Join(app.Fields(), " "))
		if !strings.Contains(haystack, Fold(f.search)) {
			return false
		}
	}

	for _, facet := range Facets {
		wanted := f.selected[facet]
		if len(wanted) == 0 {
			continue
		}
		if !matchesAny(facet.Values(app), wanted) {
			return false
		}
	}

	return true
}

// Apply returns the apps matching the filter, preserving order.
func (f *FilterState) Apply(apps []*Application) []*Application {
	if f.IsEmpty() {
		return apps
	}
	out := make([]*Application, 0, len(apps))
	for _, app := range apps {
		if f.Matches(app) {
			out = append(out, app)
		}
	}
	return out
}

func matchesAny(values, wanted []string) bool {
	for _, v := range values {
		fv := Fold(v)
		for _, w := range wanted {
			if fv == Fold(w) {
				return true
			}
		}
	}
	return false
}
