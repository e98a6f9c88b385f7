package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/config"
	"github.com/derickschaefer/dex/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage dex configuration",
	Long: `Read and write dex configuration stored in config.json.

Settings resolve in this order, later layers winning:
  built-in defaults < config.json < .env < environment (DEX_*) < flags`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template config.json in the current directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config.json already exists at %s (delete it first to re-initialise)", path)
		}
		if err := config.WriteFile(path, config.Template()); err != nil {
			return err
		}
		status(cmd, "✓ Created %s", path)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the resolved configuration, or a single key",
	Example: `  dex config get
  dex config get page_size
  dex config get --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			v, err := cfg.Get(strings.ToLower(args[0]))
			if err != nil {
				return fmt.Errorf("%w\n\nValid keys: %s", err, strings.Join(config.Keys, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		}

		src := "(not found)"
		if cfg.ConfigPath != "" {
			src = cfg.ConfigPath
		}

		values := make(map[string]string, len(config.Keys)+1)
		rows := make([][]string, 0, len(config.Keys)+1)
		for _, k := range config.Keys {
			v, _ := cfg.Get(k)
			values[k] = v
			rows = append(rows, []string{k, v})
		}
		values["config_file"] = src
		rows = append(rows, []string{"config_file", src})

		if resolveFormat("") == render.FormatJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(values)
		}
		printKVTable(cmd.OutOrStdout(), rows)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in config.json",
	Example: `  dex config set page_size 50
  dex config set backend file`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		path := config.DefaultConfigFile

		// Load existing file or start from template
		f, err := config.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			f = config.Template()
		} else if err != nil {
			return err
		}

		if err := f.Set(key, args[1]); err != nil {
			return err
		}
		if err := config.WriteFile(path, f); err != nil {
			return err
		}
		status(cmd, "✓ Set %s in %s", key, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

// printKVTable renders a two-column key/value table using aligned columns.
func printKVTable(w io.Writer, rows [][]string) {
	maxKey := 0
	for _, r := range rows {
		if len(r[0]) > maxKey {
			maxKey = len(r[0])
		}
	}
	for _, r := range rows {
		padding := strings.Repeat(" ", maxKey-len(r[0]))
		fmt.Fprintf(w, "  %s%s  %s\n", r[0], padding, r[1])
	}
}
