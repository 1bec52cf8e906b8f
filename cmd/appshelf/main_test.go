package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
)

const feedCSV = "Marca temporal,Email,Autor,Título,URL,Descripción,Plataforma,Tipo,Nivel,Área,Palabras clave,Licencia,Borrar\n" +
	"1/2/2024 10:00:00,ana@example.org,Ana,Robótica,https://robo.example.org,Robots,Web,App,Primaria,Tecnología,robot,CC BY,\n" +
	"2/2/2024 10:00:00,luis@example.org,Luis,Mates,https://mates.example.org,Sumas,Android,Juego,Secundaria,Matemáticas,,CC BY,\n" +
	"3/2/2024 10:00:00,eva@example.org,Eva,Lectura,https://lee.example.org,Cuentos,Web,App,Primaria,Lengua,,CC BY,\n"

func writeFeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte(feedCSV), 0o644))
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestBrowseTable(t *testing.T) {
	feed := writeFeed(t)

	out := execute(t, "browse", "--feed", feed, "--query", "level=Primaria", "--page", "1", "--page-size", "all", "--output", "table")

	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Robótica")
	assert.Contains(t, out, "Lectura")
	assert.NotContains(t, out, "Mates")
	assert.Contains(t, out, "page 1/1 · 2 results · all per page")
}

func TestBrowseJSONPaging(t *testing.T) {
	feed := writeFeed(t)

	out := execute(t, "browse", "--feed", feed, "--query", "", "--page", "2", "--page-size", "2", "--output", "json")

	var res browseResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.PageCount)
	require.Len(t, res.Items, 1)
	// newest submission first
	assert.Equal(t, "Robótica", res.Items[0].Title)
}

func TestBrowseYAMLSharedCollection(t *testing.T) {
	feed := writeFeed(t)

	out := execute(t, "browse", "--feed", feed, "--query", "?ids=https://lee.example.org&fav_category=Clase", "--page", "1", "--page-size", "24", "--output", "yaml")

	var res browseResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.True(t, res.ReadOnly)
	assert.Equal(t, "Clase", res.Label)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "https://lee.example.org", res.Items[0].URL)
}

func TestRenderUnknownFormat(t *testing.T) {
	err := render(&bytes.Buffer{}, "xml", browseResult{})
	assert.Error(t, err)
}

func TestShareValues(t *testing.T) {
	subjects := []string{"Lengua", "Matemáticas"}
	facets := map[domain.Facet]*[]string{domain.FacetSubject: &subjects}

	got := shareValues("robot", nil, "", facets).Encode()
	assert.Equal(t, "search=robot&subject=Lengua%2CMatem%C3%A1ticas", got)

	got = shareValues("ignored", []string{"https://a.example.org", "https://b.example.org"}, " Clase ", facets).Encode()
	assert.Equal(t, "fav_category=Clase&ids=https%3A%2F%2Fa.example.org%2Chttps%3A%2F%2Fb.example.org", got)
}

func TestShareCommand(t *testing.T) {
	out := execute(t, "share", "--base", "https://apps.example.org/?old=1", "--search", "robot")
	assert.Equal(t, "https://apps.example.org/?search=robot", strings.TrimSpace(out))
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.True(t, strings.HasPrefix(out, "appshelf "))
}
