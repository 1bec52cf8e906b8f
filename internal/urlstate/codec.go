// Package urlstate converts view state to and from shareable query strings.
package urlstate

import (
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
)

// Query parameter names.
const (
	ParamSearch      = "search"
	ParamIDs         = "ids"
	ParamFavCategory = "fav_category"
)

// facetParams maps each facet to its query parameter, in encoding order.
var facetParams = []struct {
	facet domain.Facet
	param string
}{
	{domain.FacetSubject, "subject"},
	{domain.FacetLevel, "level"},
	{domain.FacetType, "type"},
	{domain.FacetPlatform, "platform"},
	{domain.FacetAuthor, "author"},
	{domain.FacetKeyword, "keyword"},
}

// ParamFor returns the query parameter carrying facet.
func ParamFor(facet domain.Facet) string {
	for _, fp := range facetParams {
		if fp.facet == facet {
			return fp.param
		}
	}
	return ""
}

// Collection is an explicit list of record keys shared as a read-only view.
type Collection struct {
	IDs []string
	// Label is a display name, typically the favorites category shared.
	Label string
}

// Decoded is the view state recovered from a query string.
// Exactly one of Collection and Filter is set.
type Decoded struct {
	Collection *Collection
	Filter     *domain.FilterState
}

// IsCustomView reports whether the query described an explicit collection.
func (d Decoded) IsCustomView() bool {
	return d.Collection != nil
}

// EncodeFilters renders a filter as query parameters. Multiple values of a
// facet are joined with commas.
func EncodeFilters(f *domain.FilterState) url.Values {
	v := url.Values{}
	for _, fp := range facetParams {
		if sel := f.Selected(fp.facet); len(sel) > 0 {
			v.Set(fp.param, strings.Join(sel, ","))
		}
	}
	if s := f.SearchText(); s != "" {
		v.Set(ParamSearch, s)
	}
	return v
}

// EncodeCollection renders an explicit list of keys, optionally labelled.
func EncodeCollection(c Collection) url.Values {
	v := url.Values{}
	v.Set(ParamIDs, strings.Join(c.IDs, ","))
	if c.Label != "" {
		v.Set(ParamFavCategory, c.Label)
	}
	return v
}

// GenerateShareableURL appends values to base, replacing any query base had.
func GenerateShareableURL(base string, values url.Values) string {
	u, err := url.Parse(base)
	if err != nil {
		if len(values) == 0 {
			return base
		}
		return base + "?" + values.Encode()
	}
	u.RawQuery = values.Encode()
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Decode reads view state from query parameters. A present ids parameter
// wins over every filter parameter. Unknown parameters are ignored.
func Decode(values url.Values) Decoded {
	if values.Has(ParamIDs) {
		return Decoded{Collection: &Collection{
			IDs:   splitValues(values.Get(ParamIDs)),
			Label: strings.TrimSpace(values.Get(ParamFavCategory)),
		}}
	}

	f := domain.NewFilterState()
	for _, fp := range facetParams {
		for _, val := range splitValues(values.Get(fp.param)) {
			f.Select(fp.facet, val)
		}
	}
	f.SetSearchText(values.Get(ParamSearch))

	return Decoded{Filter: f}
}

// ParseQuery decodes a raw query string, tolerating a leading "?".
func ParseQuery(raw string) (Decoded, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return Decoded{}, err
	}
	return Decode(values), nil
}

func splitValues(s string) []string {
	return domain.SplitList(s)
}
