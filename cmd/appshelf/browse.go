package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/favorites"
	"github.com/MrSnakeDoc/appshelf/internal/localstate"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
	"github.com/MrSnakeDoc/appshelf/internal/sources/sheet"
	"github.com/MrSnakeDoc/appshelf/internal/view"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Print one page of the catalog",
	Long:  "Load the feed, apply the filters of a share query and print the requested page as a table, JSON or YAML.",
	RunE:  runBrowse,
}

var (
	browseFeed     string
	browseQuery    string
	browsePage     int
	browsePageSize string
	browseOutput   string
	browseTimeout  time.Duration
)

func init() {
	browseCmd.Flags().StringVarP(&browseFeed, "feed", "f", "", "CSV feed URL or local path (required)")
	browseCmd.Flags().StringVarP(&browseQuery, "query", "q", "", `share query, e.g. "subject=Lengua&search=robot"`)
	browseCmd.Flags().IntVarP(&browsePage, "page", "p", 1, "page number, starting at 1")
	browseCmd.Flags().StringVar(&browsePageSize, "page-size", domain.DefaultPageSize.String(), `items per page, or "all"`)
	browseCmd.Flags().StringVarP(&browseOutput, "output", "o", "table", "output format: table, json or yaml")
	browseCmd.Flags().DurationVar(&browseTimeout, "timeout", 30*time.Second, "feed download timeout")

	if err := browseCmd.MarkFlagRequired("feed"); err != nil {
		panic(fmt.Sprintf("failed to mark feed flag as required: %v", err))
	}

	rootCmd.AddCommand(browseCmd)
}

// browseItem is the printed subset of an application.
type browseItem struct {
	Title    string `json:"title" yaml:"title"`
	URL      string `json:"url" yaml:"url"`
	Subject  string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Level    string `json:"level,omitempty" yaml:"level,omitempty"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Platform string `json:"platform,omitempty" yaml:"platform,omitempty"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
}

type browseResult struct {
	Total     int          `json:"total" yaml:"total"`
	Page      int          `json:"page" yaml:"page"`
	PageCount int          `json:"page_count" yaml:"page_count"`
	PageSize  string       `json:"page_size" yaml:"page_size"`
	ReadOnly  bool         `json:"read_only,omitempty" yaml:"read_only,omitempty"`
	Label     string       `json:"label,omitempty" yaml:"label,omitempty"`
	Items     []browseItem `json:"items" yaml:"items"`
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	size, err := domain.ParsePageSize(browsePageSize)
	if err != nil {
		return err
	}
	values, err := url.ParseQuery(strings.TrimPrefix(browseQuery, "?"))
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), browseTimeout)
	defer cancel()

	loader := sheet.NewLoader(browseFeed, &http.Client{Timeout: browseTimeout})
	rows, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	res := sheet.NewMapper().MapApplications(rows)

	page, err := browse(ctx, res.Applications, values, browsePage, size)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), browseOutput, page)
}

// browse computes one page without any persisted visitor state.
func browse(ctx context.Context, apps []*domain.Application, values url.Values, page int, size domain.PageSize) (browseResult, error) {
	favs := favorites.Load(ctx, localstate.NewMemoryKV(), logger.Nop())
	o := view.New(apps, favs, view.WithPageSize(size))
	if _, err := o.ApplyURL(values); err != nil {
		return browseResult{}, err
	}
	p, err := o.SetPage(page)
	if err != nil {
		return browseResult{}, err
	}

	out := browseResult{
		Total:     p.Total,
		Page:      p.Page,
		PageCount: p.PageCount,
		PageSize:  p.PageSize,
		ReadOnly:  p.ReadOnly,
		Label:     p.CustomLabel,
		Items:     make([]browseItem, 0, len(p.Items)),
	}
	for _, it := range p.Items {
		out.Items = append(out.Items, browseItem{
			Title:    it.Title,
			URL:      it.URL,
			Subject:  it.Subject,
			Level:    it.Level,
			Type:     it.ResourceType,
			Platform: it.Platform,
			Author:   it.AuthorName,
		})
	}
	return out, nil
}

func render(w io.Writer, format string, r browseResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TITLE\tSUBJECT\tLEVEL\tURL")
		for _, it := range r.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Title, it.Subject, it.Level, it.URL)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\npage %d/%d · %d results · %s per page\n", r.Page, r.PageCount, r.Total, r.PageSize)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
