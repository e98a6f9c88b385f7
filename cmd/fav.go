package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/app"
	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/stream"
)

var favCmd = &cobra.Command{
	Use:   "fav",
	Short: "Manage favorite creatures",
	Long: `Commands for reading and changing the set of favorite creatures.

Favorites are stored under the "favoritePokemonIds" key of the configured
backend (bolt database or JSON settings file) as a sorted array of IDs. Every
change is written through immediately.`,
}

// ─── fav list ─────────────────────────────────────────────────────────────────

var favListDetails bool

var favListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite IDs, optionally with their full records",
	Example: `  dex fav list
  dex fav list --details --format csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		start := time.Now()
		ids := deps.Favorites.All().Sorted()
		if !favListDetails {
			return emit(cmd, deps, newResult(model.ResultFavorites, "fav list", ids, len(ids), start))
		}

		creatures, warnings := loadFavorites(cmd, deps, ids)
		result := newResult(model.ResultCreatures, "fav list --details", creatures, len(creatures), start)
		result.Warnings = warnings
		return emit(cmd, deps, result)
	},
}

// ─── fav add / remove / toggle ────────────────────────────────────────────────

var favAddCmd = &cobra.Command{
	Use:   "add <ID...|->",
	Short: "Add creatures to favorites",
	Long: `Add one or more creatures to favorites. Use "-" (or pipe input with no
arguments) to read IDs from stdin, either bare numbers or JSONL records such
as those written by 'dex list --format jsonl'.`,
	Example: `  dex fav add 1 4 7
  dex list --format jsonl | jq -c 'select(.types[0].name=="fire")' | dex fav add -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			ids []int
			err error
		)
		switch {
		case len(args) == 1 && args[0] == "-", len(args) == 0 && stream.StdinPiped():
			ids, err = stream.ReadIDs(cmd.InOrStdin())
		case len(args) == 0:
			return fmt.Errorf("specify one or more IDs, or - to read from stdin")
		default:
			ids, err = parseIntIDs(args, "creature ID")
		}
		if err != nil {
			return err
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		if len(ids) == 1 {
			if err := deps.Coordinator.Set(ids[0], true); err != nil {
				return err
			}
			status(cmd, "✓ #%d is a favorite", ids[0])
			return nil
		}
		added, err := deps.Favorites.AddMany(ids)
		if err != nil {
			return err
		}
		status(cmd, "✓ Added %d of %d (%d already favorites)", added, len(ids), len(ids)-added)
		return nil
	},
}

var favRemoveCmd = &cobra.Command{
	Use:     "remove <ID...>",
	Aliases: []string{"rm"},
	Short:   "Remove creatures from favorites",
	Example: `  dex fav remove 25`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIntIDs(args, "creature ID")
		if err != nil {
			return err
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		for _, id := range ids {
			if err := deps.Coordinator.Set(id, false); err != nil {
				return err
			}
			status(cmd, "✓ #%d removed", id)
		}
		return nil
	},
}

var favToggleCmd = &cobra.Command{
	Use:     "toggle <ID>",
	Short:   "Flip the favorite state of a creature",
	Example: `  dex fav toggle 25`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIntID(args[0], "creature ID")
		if err != nil {
			return err
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		now, err := deps.Coordinator.Toggle(id)
		if err != nil {
			return err
		}
		if now {
			status(cmd, "★ #%d added to favorites", id)
		} else {
			status(cmd, "☆ #%d removed from favorites", id)
		}
		return nil
	},
}

// ─── fav clear / export ───────────────────────────────────────────────────────

var favClearYes bool

var favClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every favorite",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !favClearYes {
			return fmt.Errorf("refusing to clear favorites without --yes")
		}
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		n := deps.Favorites.All().Len()
		if err := deps.Favorites.Clear(); err != nil {
			return err
		}
		status(cmd, "✓ Cleared %d favorites", n)
		return nil
	},
}

var favExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write favorites as JSONL records",
	Long: `Write the full record of every favorite as one JSON object per line. The
output can be fed back with 'dex fav add -' on another machine.`,
	Example: `  dex fav export > favorites.jsonl
  dex fav add - < favorites.jsonl`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		creatures, warnings := loadFavorites(cmd, deps, deps.Favorites.All().Sorted())
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠  %s\n", w)
		}

		w, closeFn, err := outputWriter(cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := stream.WriteJSONL(w, creatures); err != nil {
			_ = closeFn()
			return err
		}
		if err := closeFn(); err != nil {
			return err
		}
		if globalFlags.Out != "" && stream.IsTTY() {
			status(cmd, "✓ Wrote %d records to %s", len(creatures), globalFlags.Out)
		}
		return nil
	},
}

// loadFavorites hydrates ids one at a time through a detail view.
func loadFavorites(cmd *cobra.Command, deps *app.Deps, ids []int) ([]model.Creature, []string) {
	d, unregister := deps.NewDetail()
	defer unregister()

	var (
		creatures []model.Creature
		warnings  []string
	)
	for _, id := range ids {
		if err := d.Load(cmd.Context(), id); err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		c, _ := d.Creature()
		creatures = append(creatures, c)
	}
	return creatures, warnings
}

func init() {
	rootCmd.AddCommand(favCmd)
	favCmd.AddCommand(favListCmd)
	favCmd.AddCommand(favAddCmd)
	favCmd.AddCommand(favRemoveCmd)
	favCmd.AddCommand(favToggleCmd)
	favCmd.AddCommand(favClearCmd)
	favCmd.AddCommand(favExportCmd)

	favListCmd.Flags().BoolVar(&favListDetails, "details", false, "fetch and print the full record of each favorite")
	favClearCmd.Flags().BoolVar(&favClearYes, "yes", false, "confirm clearing all favorites")
}
