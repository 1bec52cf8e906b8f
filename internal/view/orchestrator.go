// Package view composes filtering, favorites and pagination into a single
// recompute cycle producing the page a visitor sees.
package view

import (
	"context"
	"errors"
	"net/url"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/favorites"
	"github.com/MrSnakeDoc/appshelf/internal/urlstate"
)

var (
	// ErrReentrant is returned when Recompute is called from inside itself,
	// typically by a renderer reacting to the page it was handed.
	ErrReentrant = errors.New("view: recompute already in progress")
	// ErrReadOnly is returned by commands disabled in a shared collection view.
	ErrReadOnly = errors.New("view: shared collection is read-only")
)

// State is everything a recompute depends on.
type State struct {
	Records       []*domain.Application
	Filter        *domain.FilterState
	FavoritesOnly bool
	// FavoritesTab restricts the favorites scope to one category; "" means all.
	FavoritesTab string
	Page         int
	PageSize     domain.PageSize
	// Custom is set when the view shows an explicit shared collection.
	Custom *urlstate.Collection
}

// Renderer consumes every published page.
type Renderer func(Page)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPageSize sets the initial page size.
func WithPageSize(size domain.PageSize) Option {
	return func(o *Orchestrator) { o.state.PageSize = size }
}

// WithRenderer registers the page consumer.
func WithRenderer(r Renderer) Option {
	return func(o *Orchestrator) { o.render = r }
}

// WithFavoritesTab sets the initial favorites category.
func WithFavoritesTab(tab string) Option {
	return func(o *Orchestrator) { o.state.FavoritesTab = tab }
}

// Orchestrator owns the view state of one visitor. Every command mutates the
// state and recomputes exactly once. It is not safe for concurrent use.
type Orchestrator struct {
	state     State
	favs      *favorites.Store
	render    Renderer
	current   Page
	computing bool
}

// New creates an orchestrator over records and computes the first page.
func New(records []*domain.Application, favs *favorites.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		state: State{
			Records:  records,
			Filter:   domain.NewFilterState(),
			Page:     1,
			PageSize: domain.DefaultPageSize,
		},
		favs: favs,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.state.FavoritesTab != "" && !favs.HasCategory(o.state.FavoritesTab) {
		o.state.FavoritesTab = ""
	}
	_, _ = o.Recompute()
	return o
}

// Current returns the last published page.
func (o *Orchestrator) Current() Page {
	return o.current
}

// State returns a copy of the view state.
func (o *Orchestrator) State() State {
	s := o.state
	s.Filter = o.state.Filter.Clone()
	return s
}

// Favorites exposes the visitor's favorites.
func (o *Orchestrator) Favorites() *favorites.Store {
	return o.favs
}

// Recompute rebuilds the visible page from the current state.
func (o *Orchestrator) Recompute() (Page, error) {
	if o.computing {
		return o.current, ErrReentrant
	}
	o.computing = true
	defer func() { o.computing = false }()

	scope := o.scope()
	filtered := scope
	if o.state.Custom == nil {
		filtered = o.state.Filter.Apply(scope)
	}

	size := o.state.PageSize
	total := len(filtered)
	pageCount := domain.PageCount(total, size)
	visible := domain.Slice(filtered, o.state.Page, size)

	items := make([]Item, 0, len(visible))
	for _, app := range visible {
		cat, fav := o.favs.CategoryOf(app.Key)
		items = append(items, Item{Application: app, Favorite: fav, Category: cat})
	}

	readOnly := o.state.Custom != nil
	p := Page{
		Items:          items,
		Total:          total,
		CatalogTotal:   len(o.state.Records),
		FavoritesTotal: o.favs.TotalCount(),
		Page:           o.state.Page,
		PageSize:       size.String(),
		PageCount:      pageCount,
		ShowPagination: domain.ShowPagination(total, size),
		HasPrev:        o.state.Page > 1 && pageCount > 0,
		HasNext:        o.state.Page < pageCount,
		ReadOnly:       readOnly,
		Controls: Controls{
			Search:          !readOnly,
			Filters:         !readOnly,
			FavoritesToggle: !readOnly,
			PageSize:        !readOnly,
		},
		FavoritesOnly: o.state.FavoritesOnly,
		FavoritesTab:  o.state.FavoritesTab,
		Categories:    o.favs.Categories(),
		ShareQuery:    o.shareValues().Encode(),
	}
	if readOnly {
		p.CustomLabel = o.state.Custom.Label
	} else {
		p.Search = o.state.Filter.SearchText()
		p.Filters = activeFilters(o.state.Filter)
	}

	o.current = p
	if o.render != nil {
		o.render(p)
	}
	return p, nil
}

// scope selects the records before filtering, in catalog order.
func (o *Orchestrator) scope() []*domain.Application {
	var keep map[string]bool
	switch {
	case o.state.Custom != nil:
		keep = toSet(o.state.Custom.IDs)
	case o.state.FavoritesOnly:
		keep = toSet(o.favs.Keys(o.state.FavoritesTab))
	default:
		return o.state.Records
	}

	out := make([]*domain.Application, 0, len(keep))
	for _, app := range o.state.Records {
		if keep[app.Key] {
			out = append(out, app)
		}
	}
	return out
}

func (o *Orchestrator) shareValues() url.Values {
	if o.state.Custom != nil {
		return urlstate.EncodeCollection(*o.state.Custom)
	}
	return urlstate.EncodeFilters(o.state.Filter)
}

// ─────────────────────────────────────────────────────────────────
// Commands
// ─────────────────────────────────────────────────────────────────

// SetRecords swaps the record set after a reload.
func (o *Orchestrator) SetRecords(records []*domain.Application) (Page, error) {
	o.state.Records = records
	o.state.Page = 1
	return o.Recompute()
}

// ApplyURL loads view state from query parameters. An ids parameter switches
// to a read-only shared collection, otherwise filters and search are replaced.
func (o *Orchestrator) ApplyURL(values url.Values) (Page, error) {
	decoded := urlstate.Decode(values)
	if decoded.IsCustomView() {
		o.state.Custom = decoded.Collection
		o.state.FavoritesOnly = false
	} else {
		o.state.Custom = nil
		o.state.Filter = decoded.Filter
	}
	o.state.Page = 1
	return o.Recompute()
}

// SetSearchText replaces the search text.
func (o *Orchestrator) SetSearchText(text string) (Page, error) {
	if o.readOnly() {
		return o.current, ErrReadOnly
	}
	o.state.Filter.SetSearchText(text)
	o.state.Page = 1
	return o.Recompute()
}

// ToggleFacetValue selects or deselects a facet value.
func (o *Orchestrator) ToggleFacetValue(facet domain.Facet, value string) (Page, error) {
	if o.readOnly() {
		return o.current, ErrReadOnly
	}
	o.state.Filter.ToggleFacetValue(facet, value)
	o.state.Page = 1
	return o.Recompute()
}

// ClearFilters drops the search text and every facet selection.
func (o *Orchestrator) ClearFilters() (Page, error) {
	if o.readOnly() {
		return o.current, ErrReadOnly
	}
	o.state.Filter.Clear()
	o.state.Page = 1
	return o.Recompute()
}

// SetPage moves to page n. Values below 1 select the first page.
func (o *Orchestrator) SetPage(n int) (Page, error) {
	if n < 1 {
		n = 1
	}
	o.state.Page = n
	return o.Recompute()
}

// NextPage advances one page when there is one.
func (o *Orchestrator) NextPage() (Page, error) {
	if !o.current.HasNext {
		return o.current, nil
	}
	return o.SetPage(o.state.Page + 1)
}

// PrevPage goes back one page when there is one. From past the end it
// lands on the last page.
func (o *Orchestrator) PrevPage() (Page, error) {
	if !o.current.HasPrev {
		return o.current, nil
	}
	return o.SetPage(min(o.state.Page-1, o.current.PageCount))
}

// SetPageSize changes the page size and returns to the first page.
func (o *Orchestrator) SetPageSize(size domain.PageSize) (Page, error) {
	if o.readOnly() {
		return o.current, ErrReadOnly
	}
	o.state.PageSize = size
	o.state.Page = 1
	return o.Recompute()
}

// SetFavoritesOnly switches between the whole catalog and the favorites.
func (o *Orchestrator) SetFavoritesOnly(on bool) (Page, error) {
	if o.readOnly() {
		return o.current, ErrReadOnly
	}
	o.state.FavoritesOnly = on
	o.state.Page = 1
	return o.Recompute()
}

// SetFavoritesTab selects the favorites category shown. Unknown categories
// fall back to the default one, "" shows every category.
func (o *Orchestrator) SetFavoritesTab(tab string) (Page, error) {
	if tab != "" && !o.favs.HasCategory(tab) {
		tab = favorites.DefaultCategory
	}
	o.state.FavoritesTab = tab
	if o.state.FavoritesOnly {
		o.state.Page = 1
	}
	return o.Recompute()
}

// AddFavorite files key under category (moving it from any other).
func (o *Orchestrator) AddFavorite(ctx context.Context, key, category string) (Page, error) {
	err := o.favs.AddToCategory(ctx, key, category)
	return o.afterFavoritesChange(err)
}

// RemoveFavorite unfavorites key.
func (o *Orchestrator) RemoveFavorite(ctx context.Context, key string) (Page, error) {
	err := o.favs.Remove(ctx, key)
	o.fixTab()
	return o.afterFavoritesChange(err)
}

// DeleteCategory removes a favorites category. When it was the active tab
// the view falls back to the default category.
func (o *Orchestrator) DeleteCategory(ctx context.Context, name string, mode favorites.DeleteMode) (Page, error) {
	err := o.favs.DeleteCategory(ctx, name, mode)
	if errors.Is(err, favorites.ErrDefaultCategory) || errors.Is(err, favorites.ErrCategoryNotFound) {
		return o.current, err
	}
	o.fixTab()
	return o.afterFavoritesChange(err)
}

// RenameCategory renames a favorites category, following it if active.
func (o *Orchestrator) RenameCategory(ctx context.Context, oldName, newName string) (Page, error) {
	wasActive := o.state.FavoritesTab == oldName
	if err := o.favs.RenameCategory(ctx, oldName, newName); err != nil {
		return o.current, err
	}
	if wasActive {
		o.state.FavoritesTab = newName
	}
	return o.Recompute()
}

// FavoritesCollection builds a shareable collection from a favorites
// category ("" = every favorite), keeping only keys present in the catalog.
func (o *Orchestrator) FavoritesCollection(tab string) urlstate.Collection {
	keep := toSet(o.favs.Keys(tab))
	ids := make([]string, 0, len(keep))
	for _, app := range o.state.Records {
		if keep[app.Key] {
			ids = append(ids, app.Key)
		}
	}
	return urlstate.Collection{IDs: ids, Label: tab}
}

// afterFavoritesChange recomputes after a favorites mutation, returning to
// the first page when the favorites are the scope being browsed. A
// persistence error is reported after the view is refreshed.
func (o *Orchestrator) afterFavoritesChange(saveErr error) (Page, error) {
	if o.state.FavoritesOnly {
		o.state.Page = 1
	}
	p, err := o.Recompute()
	if err != nil {
		return p, err
	}
	return p, saveErr
}

// fixTab falls back to the default category when the active one vanished.
func (o *Orchestrator) fixTab() {
	if o.state.FavoritesTab != "" && !o.favs.HasCategory(o.state.FavoritesTab) {
		o.state.FavoritesTab = favorites.DefaultCategory
	}
}

func (o *Orchestrator) readOnly() bool {
	return o.state.Custom != nil
}

func activeFilters(f *domain.FilterState) map[string][]string {
	out := make(map[string][]string)
	for _, facet := range domain.Facets {
		if sel := f.Selected(facet); len(sel) > 0 {
			out[urlstate.ParamFor(facet)] = sel
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
