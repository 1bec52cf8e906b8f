package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/urlstate"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Build a shareable catalog link",
	Long:  "Print the link reproducing a filtered view, or a read-only collection when --ids is given.",
	RunE:  runShare,
}

var (
	shareBase   string
	shareSearch string
	shareIDs    []string
	shareLabel  string
	shareFacets = map[domain.Facet]*[]string{}
)

func init() {
	shareCmd.Flags().StringVar(&shareBase, "base", "", "public site URL (required)")
	shareCmd.Flags().StringVar(&shareSearch, "search", "", "free text search")
	shareCmd.Flags().StringSliceVar(&shareIDs, "ids", nil, "application URLs of a fixed collection")
	shareCmd.Flags().StringVar(&shareLabel, "label", "", "display name of the collection")
	for _, f := range domain.Facets {
		vals := []string{}
		shareFacets[f] = &vals
		shareCmd.Flags().StringSliceVar(shareFacets[f], urlstate.ParamFor(f), nil, fmt.Sprintf("%s values to select", f))
	}

	if err := shareCmd.MarkFlagRequired("base"); err != nil {
		panic(fmt.Sprintf("failed to mark base flag as required: %v", err))
	}

	rootCmd.AddCommand(shareCmd)
}

func runShare(cmd *cobra.Command, _ []string) error {
	values := shareValues(shareSearch, shareIDs, shareLabel, shareFacets)
	_, err := fmt.Fprintln(cmd.OutOrStdout(), urlstate.GenerateShareableURL(shareBase, values))
	return err
}

func shareValues(search string, ids []string, label string, facets map[domain.Facet]*[]string) url.Values {
	if len(ids) > 0 {
		return urlstate.EncodeCollection(urlstate.Collection{IDs: ids, Label: strings.TrimSpace(label)})
	}

	f := domain.NewFilterState()
	for _, facet := range domain.Facets {
		if vals, ok := facets[facet]; ok {
			for _, v := range *vals {
				f.Select(facet, v)
			}
		}
	}
	f.SetSearchText(search)
	return urlstate.EncodeFilters(f)
}
