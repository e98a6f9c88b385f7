package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/model"
)

var (
	listPages int
	listAll   bool
	listFavs  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List creatures, hydrating each entry with its full record",
	Long: `List creatures in catalog order.

Each page of the list endpoint is hydrated one entry at a time; entries
whose detail request fails are skipped and logged to stderr. Paging
stops when the API reports no further page or a page yields no records.

If a later page fails to load, the pages already loaded are still printed
and the failure is reported as a warning.`,
	Example: `  dex list
  dex list --pages 3 --page-size 50
  dex list --all --format jsonl > catalog.jsonl
  dex list --favorites`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listPages < 1 && !listAll {
			return fmt.Errorf("--pages must be at least 1")
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		p, unregister := deps.NewPipeline()
		defer unregister()

		start := time.Now()
		ctx := cmd.Context()
		if err := p.LoadInitial(ctx); err != nil {
			return err
		}

		var warnings []string
		pages := 1
		for p.HasMore() && (listAll || pages < listPages) {
			if err := p.LoadMore(ctx); err != nil {
				warnings = append(warnings, fmt.Sprintf("page %d: %v", pages+1, err))
				break
			}
			pages++
			slog.Debug("page appended", "pages", pages, "records", p.Len(), "state", p.State())
		}

		items := p.Items()
		if listFavs {
			kept := items[:0]
			for _, c := range items {
				if c.IsFavorited {
					kept = append(kept, c)
				}
			}
			items = kept
		}

		result := newResult(model.ResultCreatures, "list", items, len(items), start)
		result.Stats.Pages = pages
		result.Warnings = warnings
		return emit(cmd, deps, result)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().IntVar(&listPages, "pages", 1, "number of pages to load")
	listCmd.Flags().BoolVar(&listAll, "all", false, "keep loading until the catalog is exhausted")
	listCmd.Flags().BoolVar(&listFavs, "favorites", false, "only print favorited creatures")
}
