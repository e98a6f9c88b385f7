// Package cmd implements the dex CLI command tree.
// This file defines the root command and registers all global persistent flags.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/derickschaefer/dex/internal/app"
	"github.com/derickschaefer/dex/internal/config"
	"github.com/derickschaefer/dex/internal/logging"
)

// globalFlags holds the parsed values of all persistent (global) flags.
// Commands read from this struct via the deps they receive.
var globalFlags struct {
	Format    string
	Out       string
	BaseURL   string
	Timeout   string
	Rate      float64
	PageSize  int
	Backend   string
	DB        string
	Quiet     bool
	Verbose   bool
	Debug     bool
	LogFormat string
}

// rootCmd is the base command. Running `dex` with no subcommand prints help.
var rootCmd = &cobra.Command{
	Use:   "dex",
	Short: "dex — browse the PokéAPI creature catalog from the terminal",
	Long: `dex lists, inspects and bookmarks creatures from the public PokéAPI
(https://pokeapi.co). Lists are fetched a page at a time and every entry is
hydrated with its full record. Favorites are kept in a local store and shown
on every view.

Quick start:
  dex home                     # featured creatures, types and regions
  dex list --pages 2           # first two pages of the catalog
  dex get 25                   # full record with base stats
  dex fav toggle 25            # bookmark / un-bookmark`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildDeps resolves config and constructs the dependency container.
// Called at the start of each command's RunE.
func buildDeps() (*app.Deps, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	if err := logging.Setup(logging.Options{
		Level:  level,
		Format: cfg.LogFormat,
		Writer: os.Stderr,
		Color:  logging.IsTerminal(os.Stderr),
	}); err != nil {
		return nil, err
	}

	return app.New(cfg)
}

// resolveConfig loads config and applies CLI flag overrides.
func resolveConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	cfg.Quiet = globalFlags.Quiet
	cfg.Verbose = globalFlags.Verbose
	cfg.Debug = globalFlags.Debug
	cfg.LogFormat = globalFlags.LogFormat

	if globalFlags.Format != "" {
		cfg.Format = globalFlags.Format
	}
	if globalFlags.BaseURL != "" {
		cfg.BaseURL = globalFlags.BaseURL
	}
	if globalFlags.Timeout != "" {
		d, err := time.ParseDuration(globalFlags.Timeout)
		if err != nil {
			return nil, fmt.Errorf("--timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if globalFlags.Rate > 0 {
		cfg.Rate = globalFlags.Rate
	}
	if globalFlags.PageSize > 0 {
		cfg.PageSize = globalFlags.PageSize
	}
	if globalFlags.Backend != "" {
		cfg.Backend = globalFlags.Backend
	}
	if globalFlags.DB != "" {
		if cfg.Backend == config.BackendFile {
			cfg.SettingsPath = globalFlags.DB
		} else {
			cfg.DBPath = globalFlags.DB
		}
	}
	return cfg, nil
}

func init() {
	pf := rootCmd.PersistentFlags()

	pf.StringVar(&globalFlags.Format, "format", "",
		"output format: table|json|jsonl|csv|tsv|md (default: table)")
	pf.StringVar(&globalFlags.Out, "out", "",
		"write output to file instead of stdout")
	pf.StringVar(&globalFlags.BaseURL, "base-url", "",
		"catalog API root (overrides env DEX_BASE_URL and config.json)")
	pf.StringVar(&globalFlags.Timeout, "timeout", "",
		"HTTP request timeout (e.g. 30s, 2m)")
	pf.Float64Var(&globalFlags.Rate, "rate", 0,
		"max API requests per second (default: unlimited)")
	pf.IntVar(&globalFlags.PageSize, "page-size", 0,
		"list entries requested per page (default: 20)")
	pf.StringVar(&globalFlags.Backend, "backend", "",
		"favorites backend: bolt|file (default: bolt)")
	pf.StringVar(&globalFlags.DB, "db", "",
		"path of the favorites database or settings file")
	pf.BoolVar(&globalFlags.Quiet, "quiet", false,
		"suppress all non-error output")
	pf.BoolVar(&globalFlags.Verbose, "verbose", false,
		"show timing stats after output")
	pf.BoolVar(&globalFlags.Debug, "debug", false,
		"log HTTP requests and pipeline transitions")
	pf.StringVar(&globalFlags.LogFormat, "log-format", "",
		"log format on stderr: auto|text|json (default: auto)")
}
