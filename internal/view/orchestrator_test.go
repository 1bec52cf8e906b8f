package view

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/favorites"
	"github.com/MrSnakeDoc/appshelf/internal/localstate"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
)

func key(i int) string { return fmt.Sprintf("https://apps.example.org/%02d", i) }

func catalog(n int) []*domain.Application {
	apps := make([]*domain.Application, 0, n)
	for i := 1; i <= n; i++ {
		subject := "Lengua"
		if i%2 == 0 {
			subject = "Matemáticas"
		}
		apps = append(apps, &domain.Application{
			Key:     key(i),
			URL:     key(i),
			Title:   fmt.Sprintf("App %02d", i),
			Subject: subject,
		})
	}
	return apps
}

func newFavorites(t *testing.T) *favorites.Store {
	t.Helper()
	return favorites.Load(context.Background(), localstate.NewMemoryKV(), logger.Nop())
}

func itemKeys(p Page) []string {
	out := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.Key)
	}
	return out
}

func TestInitialPage(t *testing.T) {
	o := New(catalog(30), newFavorites(t))
	p := o.Current()

	assert.Len(t, p.Items, 24)
	assert.Equal(t, 30, p.Total)
	assert.Equal(t, 30, p.CatalogTotal)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 2, p.PageCount)
	assert.Equal(t, "24", p.PageSize)
	assert.True(t, p.ShowPagination)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)
	assert.False(t, p.ReadOnly)
	assert.Equal(t, []string{favorites.DefaultCategory}, p.Categories)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	o := New(catalog(30), newFavorites(t))
	_, err := o.ToggleFacetValue(domain.FacetSubject, "Lengua")
	require.NoError(t, err)

	first, err := o.Recompute()
	require.NoError(t, err)
	second, err := o.Recompute()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFilterChangesResetPage(t *testing.T) {
	cmds := map[string]func(o *Orchestrator) (Page, error){
		"search": func(o *Orchestrator) (Page, error) { return o.SetSearchText("app") },
		"facet": func(o *Orchestrator) (Page, error) {
			return o.ToggleFacetValue(domain.FacetSubject, "Lengua")
		},
		"clear":     func(o *Orchestrator) (Page, error) { return o.ClearFilters() },
		"page size": func(o *Orchestrator) (Page, error) { return o.SetPageSize(5) },
		"favorites": func(o *Orchestrator) (Page, error) { return o.SetFavoritesOnly(false) },
	}

	for name, cmd := range cmds {
		t.Run(name, func(t *testing.T) {
			o := New(catalog(30), newFavorites(t), WithPageSize(10))
			p, err := o.SetPage(3)
			require.NoError(t, err)
			require.Equal(t, 3, p.Page)

			p, err = cmd(o)
			require.NoError(t, err)
			assert.Equal(t, 1, p.Page)
		})
	}
}

func TestSearchAndFacets(t *testing.T) {
	o := New(catalog(30), newFavorites(t))

	p, err := o.SetSearchText("  app 0 ")
	require.NoError(t, err)
	assert.Equal(t, 9, p.Total)
	assert.Equal(t, "app 0", p.Search)

	p, err = o.ToggleFacetValue(domain.FacetSubject, "matematicas")
	require.NoError(t, err)
	assert.Equal(t, []string{key(2), key(4), key(6), key(8)}, itemKeys(p))
	assert.Equal(t, map[string][]string{"subject": {"matematicas"}}, p.Filters)
	assert.Equal(t, "search=app+0&subject=matematicas", p.ShareQuery)

	p, err = o.ClearFilters()
	require.NoError(t, err)
	assert.Equal(t, 30, p.Total)
	assert.Nil(t, p.Filters)
}

func TestPagingNavigation(t *testing.T) {
	o := New(catalog(25), newFavorites(t), WithPageSize(10))

	p, err := o.PrevPage()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)

	_, _ = o.NextPage()
	p, _ = o.NextPage()
	assert.Equal(t, 3, p.Page)
	assert.Len(t, p.Items, 5)
	assert.False(t, p.HasNext)

	p, _ = o.NextPage()
	assert.Equal(t, 3, p.Page)

	p, _ = o.SetPage(0)
	assert.Equal(t, 1, p.Page)

	p, _ = o.SetPage(9)
	assert.Empty(t, p.Items)
	assert.Equal(t, 3, p.PageCount)
	assert.True(t, p.HasPrev)
	assert.False(t, p.HasNext)

	p, _ = o.PrevPage()
	assert.Equal(t, 3, p.Page)
	assert.Len(t, p.Items, 5)
}

func TestHugePageIsEmpty(t *testing.T) {
	o := New(catalog(25), newFavorites(t), WithPageSize(10))

	p, err := o.SetPage(math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, p.Items)
	assert.Equal(t, 25, p.Total)

	p, _ = o.PrevPage()
	assert.Equal(t, 3, p.Page)
}

func TestUnboundedPageSize(t *testing.T) {
	o := New(catalog(30), newFavorites(t))

	p, err := o.SetPageSize(domain.Unbounded)
	require.NoError(t, err)
	assert.Len(t, p.Items, 30)
	assert.Equal(t, "all", p.PageSize)
	assert.Equal(t, 1, p.PageCount)
	assert.False(t, p.ShowPagination)
}

func TestFavoritesScope(t *testing.T) {
	ctx := context.Background()
	o := New(catalog(10), newFavorites(t))

	_, err := o.AddFavorite(ctx, key(7), "")
	require.NoError(t, err)
	_, err = o.AddFavorite(ctx, key(2), "Juegos")
	require.NoError(t, err)
	p, err := o.AddFavorite(ctx, key(4), "Juegos")
	require.NoError(t, err)
	assert.Equal(t, 3, p.FavoritesTotal)

	p, err = o.SetFavoritesOnly(true)
	require.NoError(t, err)
	assert.Equal(t, []string{key(2), key(4), key(7)}, itemKeys(p))
	assert.Equal(t, "Juegos", p.Items[0].Category)
	assert.True(t, p.Items[0].Favorite)

	p, err = o.SetFavoritesTab("Juegos")
	require.NoError(t, err)
	assert.Equal(t, []string{key(2), key(4)}, itemKeys(p))

	p, err = o.ToggleFacetValue(domain.FacetSubject, "Matemáticas")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Total)

	p, err = o.SetFavoritesOnly(false)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Total)
}

func TestFavoritesMutationPageReset(t *testing.T) {
	ctx := context.Background()

	t.Run("catalog mode keeps page", func(t *testing.T) {
		o := New(catalog(30), newFavorites(t), WithPageSize(10))
		_, _ = o.SetPage(2)

		p, err := o.AddFavorite(ctx, key(15), "")
		require.NoError(t, err)
		assert.Equal(t, 2, p.Page)
		assert.True(t, p.Items[4].Favorite)
	})

	t.Run("favorites mode resets page", func(t *testing.T) {
		o := New(catalog(30), newFavorites(t), WithPageSize(1))
		for _, i := range []int{1, 2, 3} {
			_, err := o.AddFavorite(ctx, key(i), "")
			require.NoError(t, err)
		}
		_, _ = o.SetFavoritesOnly(true)
		_, _ = o.SetPage(3)

		p, err := o.RemoveFavorite(ctx, key(1))
		require.NoError(t, err)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 2, p.Total)
	})
}

func TestDeleteActiveCategoryFallsBack(t *testing.T) {
	ctx := context.Background()
	o := New(catalog(10), newFavorites(t))

	_, _ = o.AddFavorite(ctx, key(1), "Juegos")
	_, _ = o.AddFavorite(ctx, key(2), "")
	_, _ = o.SetFavoritesOnly(true)
	_, _ = o.SetFavoritesTab("Juegos")

	p, err := o.DeleteCategory(ctx, "Juegos", favorites.DropItems)
	require.NoError(t, err)
	assert.Equal(t, favorites.DefaultCategory, p.FavoritesTab)
	assert.Equal(t, []string{key(2)}, itemKeys(p))

	_, err = o.DeleteCategory(ctx, favorites.DefaultCategory, favorites.DropItems)
	assert.ErrorIs(t, err, favorites.ErrDefaultCategory)

	_, err = o.DeleteCategory(ctx, "Nope", favorites.KeepItems)
	assert.ErrorIs(t, err, favorites.ErrCategoryNotFound)
}

func TestRemovingLastItemOfTabFallsBack(t *testing.T) {
	ctx := context.Background()
	o := New(catalog(10), newFavorites(t))

	_, _ = o.AddFavorite(ctx, key(3), "Juegos")
	_, _ = o.SetFavoritesTab("Juegos")

	p, err := o.RemoveFavorite(ctx, key(3))
	require.NoError(t, err)
	assert.Equal(t, favorites.DefaultCategory, p.FavoritesTab)
	assert.Equal(t, []string{favorites.DefaultCategory}, p.Categories)
}

func TestRenameActiveCategory(t *testing.T) {
	ctx := context.Background()
	o := New(catalog(10), newFavorites(t))

	_, _ = o.AddFavorite(ctx, key(3), "Juegos")
	_, _ = o.SetFavoritesTab("Juegos")

	p, err := o.RenameCategory(ctx, "Juegos", "Ocio")
	require.NoError(t, err)
	assert.Equal(t, "Ocio", p.FavoritesTab)
	assert.Equal(t, "Ocio", p.Items[2].Category)

	_, err = o.RenameCategory(ctx, favorites.DefaultCategory, "X")
	assert.ErrorIs(t, err, favorites.ErrDefaultCategory)
}

func TestUnknownTabFallsBackToDefault(t *testing.T) {
	o := New(catalog(3), newFavorites(t), WithFavoritesTab("Gone"))
	assert.Empty(t, o.Current().FavoritesTab)

	p, err := o.SetFavoritesTab("Gone")
	require.NoError(t, err)
	assert.Equal(t, favorites.DefaultCategory, p.FavoritesTab)
}

func TestCustomViewIsReadOnly(t *testing.T) {
	o := New(catalog(10), newFavorites(t), WithPageSize(1))

	p, err := o.ApplyURL(url.Values{
		"ids":          {key(7) + "," + key(3) + ",https://gone.example.org"},
		"fav_category": {"Juegos"},
		"subject":      {"Lengua"},
	})
	require.NoError(t, err)

	assert.True(t, p.ReadOnly)
	assert.Equal(t, "Juegos", p.CustomLabel)
	assert.Equal(t, Controls{}, p.Controls)
	assert.Equal(t, 2, p.Total)
	assert.Equal(t, []string{key(3)}, itemKeys(p))

	for name, cmd := range map[string]func() (Page, error){
		"search":    func() (Page, error) { return o.SetSearchText("x") },
		"facet":     func() (Page, error) { return o.ToggleFacetValue(domain.FacetLevel, "x") },
		"clear":     func() (Page, error) { return o.ClearFilters() },
		"page size": func() (Page, error) { return o.SetPageSize(10) },
		"favorites": func() (Page, error) { return o.SetFavoritesOnly(true) },
	} {
		_, err := cmd()
		assert.ErrorIs(t, err, ErrReadOnly, name)
	}

	p, err = o.NextPage()
	require.NoError(t, err)
	assert.Equal(t, []string{key(7)}, itemKeys(p))

	p, err = o.ApplyURL(url.Values{"level": {"Primaria"}})
	require.NoError(t, err)
	assert.False(t, p.ReadOnly)
	assert.Equal(t, 0, p.Total)
}

func TestReentrantRecompute(t *testing.T) {
	var (
		o     *Orchestrator
		inner error
		calls int
	)
	o = New(catalog(3), newFavorites(t), WithRenderer(func(Page) {
		calls++
		if o != nil {
			_, inner = o.Recompute()
		}
	}))
	require.Equal(t, 1, calls)

	_, err := o.SetSearchText("app")
	require.NoError(t, err)
	assert.True(t, errors.Is(inner, ErrReentrant))
	assert.Equal(t, 2, calls)
}

func TestSetRecordsResetsPage(t *testing.T) {
	o := New(catalog(30), newFavorites(t), WithPageSize(10))
	_, _ = o.SetPage(3)

	p, err := o.SetRecords(catalog(5))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 5, p.CatalogTotal)
}

func TestFavoritesCollection(t *testing.T) {
	ctx := context.Background()
	o := New(catalog(5), newFavorites(t))

	_, _ = o.AddFavorite(ctx, key(4), "Juegos")
	_, _ = o.AddFavorite(ctx, "https://gone.example.org", "Juegos")
	_, _ = o.AddFavorite(ctx, key(1), "Juegos")
	_, _ = o.AddFavorite(ctx, key(2), "")

	c := o.FavoritesCollection("Juegos")
	assert.Equal(t, []string{key(1), key(4)}, c.IDs)
	assert.Equal(t, "Juegos", c.Label)

	all := o.FavoritesCollection("")
	assert.Equal(t, []string{key(1), key(2), key(4)}, all.IDs)
}
