// Package config handles loading and resolving dex configuration.
// Resolution order (later layers win):
//  1. built-in defaults
//  2. config.json in the current working directory
//  3. environment variables (a .env file in the working directory is loaded
//     first; variables already set in the process take precedence over it)
//  4. CLI flags, applied by the caller after Load
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultConfigFile    = "config.json"
	DefaultEnvFile       = ".env"
	DefaultFormat        = "table"
	DefaultBaseURL       = "https://pokeapi.co/api/v2/"
	DefaultTimeout       = 30 * time.Second
	DefaultRate          = 0.0 // unlimited
	DefaultPageSize      = 20
	DefaultFeaturedCount = 9
	DefaultRegionCount   = 6
	DefaultTypeLimit     = 100
	DefaultLogLevel      = "warn"

	BackendBolt = "bolt"
	BackendFile = "file"

	EnvBaseURL  = "DEX_BASE_URL"
	EnvDBPath   = "DEX_DB_PATH"
	EnvBackend  = "DEX_BACKEND"
	EnvLogLevel = "DEX_LOG_LEVEL"
)

// File is the on-disk representation of config.json.
type File struct {
	BaseURL       string  `json:"base_url,omitempty"`
	Timeout       string  `json:"timeout,omitempty"`
	Rate          float64 `json:"rate,omitempty"`
	PageSize      int     `json:"page_size,omitempty"`
	FeaturedCount int     `json:"featured_count,omitempty"`
	RegionCount   int     `json:"region_count,omitempty"`
	TypeLimit     int     `json:"type_limit,omitempty"`
	DefaultFormat string  `json:"default_format,omitempty"`
	Backend       string  `json:"backend,omitempty"`
	DBPath        string  `json:"db_path,omitempty"`
	SettingsPath  string  `json:"settings_path,omitempty"`
	LogLevel      string  `json:"log_level,omitempty"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	Rate          float64
	PageSize      int
	FeaturedCount int
	RegionCount   int
	TypeLimit     int
	Format        string
	Backend       string
	DBPath        string
	SettingsPath  string
	LogLevel      string
	ConfigPath    string // path of the config.json that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	Quiet     bool
	Verbose   bool
	Debug     bool
	LogFormat string
}

// Load resolves configuration from defaults, config.json, .env and the
// environment. A malformed config.json is an error; a missing one is not.
func Load() (*Config, error) {
	cfg := &Config{
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
		Rate:          DefaultRate,
		PageSize:      DefaultPageSize,
		FeaturedCount: DefaultFeaturedCount,
		RegionCount:   DefaultRegionCount,
		TypeLimit:     DefaultTypeLimit,
		Format:        DefaultFormat,
		Backend:       BackendBolt,
		LogLevel:      DefaultLogLevel,
	}

	// Layer 1: config.json
	f, path, err := loadFile()
	if err != nil {
		return nil, err
	}
	if f != nil {
		applyFile(cfg, f, path)
	}

	// Layer 2: .env, then the process environment
	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", DefaultEnvFile, err)
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	cfg.fillPaths()
	return cfg, nil
}

// fillPaths sets home-relative defaults for any storage path still unset.
func (c *Config) fillPaths() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(home, ".dex", "dex.db")
	}
	if c.SettingsPath == "" {
		c.SettingsPath = filepath.Join(home, ".dex", "settings.json")
	}
}

// Validate returns an error describing the first invalid setting.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendBolt:
		if c.DBPath == "" {
			return errors.New("db_path is empty and no home directory is available; set DEX_DB_PATH or --db")
		}
	case BackendFile:
		if c.SettingsPath == "" {
			return errors.New("settings_path is empty and no home directory is available")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendBolt, BackendFile)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %g", c.Rate)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	return nil
}

// loadFile reads config.json from the current working directory. It
// returns (nil, "", nil) when the file does not exist.
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, path, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.PageSize > 0 {
		cfg.PageSize = f.PageSize
	}
	if f.FeaturedCount > 0 {
		cfg.FeaturedCount = f.FeaturedCount
	}
	if f.RegionCount > 0 {
		cfg.RegionCount = f.RegionCount
	}
	if f.TypeLimit > 0 {
		cfg.TypeLimit = f.TypeLimit
	}
	if f.DefaultFormat != "" {
		cfg.Format = f.DefaultFormat
	}
	if f.Backend != "" {
		cfg.Backend = f.Backend
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
	if f.SettingsPath != "" {
		cfg.SettingsPath = f.SettingsPath
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial config.json via `dex config init`.
func Template() File {
	return File{
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout.String(),
		PageSize:      DefaultPageSize,
		FeaturedCount: DefaultFeaturedCount,
		RegionCount:   DefaultRegionCount,
		TypeLimit:     DefaultTypeLimit,
		DefaultFormat: DefaultFormat,
		Backend:       BackendBolt,
		LogLevel:      DefaultLogLevel,
	}
}

// ReadFile parses the config.json at path.
func ReadFile(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

// ─── Key access (config get/set) ──────────────────────────────────────────────

// Keys lists the settable config.json keys in display order.
var Keys = []string{
	"base_url", "timeout", "rate", "page_size", "featured_count", "region_count",
	"type_limit", "default_format", "backend", "db_path", "settings_path", "log_level",
}

// Get returns the resolved value of key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "base_url":
		return c.BaseURL, nil
	case "timeout":
		return c.Timeout.String(), nil
	case "rate":
		return fmt.Sprintf("%g", c.Rate), nil
	case "page_size":
		return fmt.Sprintf("%d", c.PageSize), nil
	case "featured_count":
		return fmt.Sprintf("%d", c.FeaturedCount), nil
	case "region_count":
		return fmt.Sprintf("%d", c.RegionCount), nil
	case "type_limit":
		return fmt.Sprintf("%d", c.TypeLimit), nil
	case "default_format":
		return c.Format, nil
	case "backend":
		return c.Backend, nil
	case "db_path":
		return c.DBPath, nil
	case "settings_path":
		return c.SettingsPath, nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown config key %q", key)
}

// Set parses value and stores it under key in f.
func (f *File) Set(key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%s: expected a positive integer, got %q", key, value)
		}
		return n, nil
	}

	var err error
	switch key {
	case "base_url":
		f.BaseURL = value
	case "timeout":
		if _, perr := time.ParseDuration(value); perr != nil {
			return fmt.Errorf("timeout: %w", perr)
		}
		f.Timeout = value
	case "rate":
		r, perr := strconv.ParseFloat(value, 64)
		if perr != nil || r < 0 {
			return fmt.Errorf("rate: expected a non-negative number, got %q", value)
		}
		f.Rate = r
	case "page_size":
		f.PageSize, err = atoi()
	case "featured_count":
		f.FeaturedCount, err = atoi()
	case "region_count":
		f.RegionCount, err = atoi()
	case "type_limit":
		f.TypeLimit, err = atoi()
	case "default_format":
		f.DefaultFormat = value
	case "backend":
		if value != BackendBolt && value != BackendFile {
			return fmt.Errorf("backend: want %s or %s, got %q", BackendBolt, BackendFile, value)
		}
		f.Backend = value
	case "db_path":
		f.DBPath = value
	case "settings_path":
		f.SettingsPath = value
	case "log_level":
		f.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return err
}
