package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/derickschaefer/dex/internal/app"
	"github.com/derickschaefer/dex/internal/model"
)

// ─── types ────────────────────────────────────────────────────────────────────

var typesLimit int

var typesCmd = &cobra.Command{
	Use:   "types [ID]",
	Short: "List elemental types, or look one up by ID",
	Example: `  dex types
  dex types 10
  dex types --format jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if len(args) == 1 {
			var err error
			if id, err = parseIntID(args[0], "type ID"); err != nil {
				return err
			}
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		if len(args) == 1 {
			t, err := deps.Client.GetType(cmd.Context(), id)
			if err != nil {
				return err
			}
			return emit(cmd, deps, newResult(model.ResultTypes, fmt.Sprintf("types %d", id), []string{t.Name}, 1, start))
		}

		limit := typesLimit
		if limit <= 0 {
			limit = deps.Config.TypeLimit
		}
		page, err := deps.Client.ListTypes(cmd.Context(), limit, 0)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(page.Results))
		for _, ref := range page.Results {
			names = append(names, ref.Name)
		}
		return emit(cmd, deps, newResult(model.ResultTypes, "types", names, len(names), start))
	},
}

// ─── regions ──────────────────────────────────────────────────────────────────

var (
	regionsLimit       int
	regionsConcurrency int
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List regions with their location counts",
	Long: `List regions in catalog order. Each region is fetched individually to count
its locations; regions that fail to load are reported as warnings.`,
	Example: `  dex regions
  dex regions --limit 3 --format md`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		page, err := deps.Client.ListRegions(cmd.Context())
		if err != nil {
			return err
		}

		refs := page.Results
		if regionsLimit > 0 && len(refs) > regionsLimit {
			refs = refs[:regionsLimit]
		}
		regions, warnings := batchGetRegions(cmd.Context(), deps, refs, regionsConcurrency)

		result := newResult(model.ResultRegions, "regions", regions, len(regions), start)
		result.Warnings = warnings
		return emit(cmd, deps, result)
	},
}

// batchGetRegions hydrates refs concurrently, at most limit at a time.
// Results keep list order; failures are returned as warnings.
func batchGetRegions(ctx context.Context, deps *app.Deps, refs []model.EntryRef, limit int) ([]model.Region, []string) {
	if limit <= 0 {
		limit = 4
	}

	results := make([]*model.Region, len(refs))
	errs := make([]error, len(refs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, ref := range refs {
		id, ok := ref.ID()
		if !ok {
			errs[i] = fmt.Errorf("region %q: no id in %q", ref.Name, ref.URL)
			continue
		}
		g.Go(func() error {
			results[i], errs[i] = deps.Client.GetRegion(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	var regions []model.Region
	var warnings []string
	for i := range refs {
		if errs[i] != nil {
			warnings = append(warnings, errs[i].Error())
			continue
		}
		regions = append(regions, *results[i])
	}
	return regions, warnings
}

func init() {
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(regionsCmd)

	typesCmd.Flags().IntVar(&typesLimit, "limit", 0, "maximum number of types (default: type_limit from config)")
	regionsCmd.Flags().IntVar(&regionsLimit, "limit", 0, "only the first N regions (default: all)")
	regionsCmd.Flags().IntVar(&regionsConcurrency, "concurrency", 4, "parallel region requests")
}
