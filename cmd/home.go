package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/util"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Show featured creatures, elemental types and regions",
	Long: `Show the landing view: the first featured creatures in catalog order, the
elemental types and a summary of the first regions.

The three sections load concurrently. A section that fails is reported as a
warning and the others are still printed; the command only fails when every
section fails.`,
	Example: `  dex home
  dex home --format json | jq '.data.types'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		l, unregister := deps.NewLanding()
		defer unregister()

		start := time.Now()
		loadErr := l.Load(cmd.Context())

		var warnings []string
		if loadErr != nil {
			var multi *util.MultiError
			if errors.As(loadErr, &multi) {
				for _, e := range multi.Errors {
					warnings = append(warnings, e.Error())
				}
			} else {
				warnings = append(warnings, loadErr.Error())
			}
		}

		snap := l.Snapshot()
		if loadErr != nil && len(snap.Featured) == 0 && len(snap.Types) == 0 && len(snap.Regions) == 0 {
			return loadErr
		}

		items := len(snap.Featured) + len(snap.Types) + len(snap.Regions)
		result := newResult(model.ResultLanding, "home", &snap, items, start)
		result.Warnings = warnings
		return emit(cmd, deps, result)
	},
}

func init() {
	rootCmd.AddCommand(homeCmd)
}
