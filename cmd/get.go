package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/model"
)

var getCmd = &cobra.Command{
	Use:   "get <ID...>",
	Short: "Fetch the full record for one or more creatures",
	Long: `Fetch creatures by catalog number.

With a single ID the detail view is printed, including artwork URL, height,
weight and base stats. With several IDs a summary table is printed; IDs that
fail to load are reported as warnings.`,
	Example: `  dex get 25
  dex get '#25' --format json
  dex get 1 4 7 --format csv`,
	Args: cobra.MinimumNArgs(1),
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

		d, unregister := deps.NewDetail()
		defer unregister()

		start := time.Now()
		ctx := cmd.Context()

		if len(ids) == 1 {
			if err := d.Load(ctx, ids[0]); err != nil {
				return err
			}
			c, _ := d.Creature()
			result := newResult(model.ResultCreature, fmt.Sprintf("get %d", ids[0]), &c, 1, start)
			return emit(cmd, deps, result)
		}

		// Sequential: one view, one record at a time.
		var (
			creatures []model.Creature
			warnings  []string
			names     []string
		)
		for _, id := range ids {
			names = append(names, fmt.Sprint(id))
			if err := d.Load(ctx, id); err != nil {
				warnings = append(warnings, err.Error())
				continue
			}
			c, _ := d.Creature()
			creatures = append(creatures, c)
		}
		if len(creatures) == 0 {
			return fmt.Errorf("no creatures loaded: %s", strings.Join(warnings, "; "))
		}

		result := newResult(model.ResultCreatures, "get "+strings.Join(names, " "), creatures, len(creatures), start)
		result.Warnings = warnings
		return emit(cmd, deps, result)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
