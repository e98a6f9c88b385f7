// Package app wires together configuration, the API client, the favorites
// backend and the toggle coordinator into a single Deps struct that
// commands receive at runtime.
package app

import (
	"errors"
	"fmt"

	"github.com/derickschaefer/dex/internal/catalog"
	"github.com/derickschaefer/dex/internal/config"
	"github.com/derickschaefer/dex/internal/favorites"
	"github.com/derickschaefer/dex/internal/pokeapi"
	"github.com/derickschaefer/dex/internal/store"
)

// Version is stamped at build time via -ldflags "-X .../app.Version=...".
var Version = "dev"

// Deps holds all runtime dependencies injected into command Run functions.
// Store is non-nil only for the bolt backend.
type Deps struct {
	Config      *config.Config
	Client      *pokeapi.Client
	Store       *store.Store
	Settings    store.Settings
	Favorites   *favorites.Store
	Coordinator *favorites.Coordinator
}

// New builds a Deps from resolved config. The favorites backend is opened
// here; callers must Close the returned Deps.
func New(cfg *config.Config) (*Deps, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := pokeapi.NewClient(cfg.BaseURL, cfg.Timeout, cfg.Rate, cfg.Debug)
	client.SetUserAgent("dex-cli/" + Version)

	d := &Deps{Config: cfg, Client: client}
	switch cfg.Backend {
	case config.BackendFile:
		d.Settings = store.NewFileSettings(cfg.SettingsPath)
	default:
		s, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		d.Store = s
		d.Settings = s
	}

	d.Favorites = favorites.NewStore(d.Settings)
	d.Coordinator = favorites.NewCoordinator(d.Favorites)
	return d, nil
}

// Close releases the favorites backend.
func (d *Deps) Close() error {
	if d == nil || d.Store == nil {
		return nil
	}
	return d.Store.Close()
}

// RequireStore returns an error unless the bolt backend is in use.
func (d *Deps) RequireStore() error {
	if d.Store == nil {
		return fmt.Errorf("%w: this command needs the %q backend (current: %q)", ErrNoStore, config.BackendBolt, d.Config.Backend)
	}
	return nil
}

// ─── View constructors ────────────────────────────────────────────────────────

// NewPipeline returns a creature list pipeline registered with the
// coordinator. Call the returned func when the view is discarded.
func (d *Deps) NewPipeline() (*catalog.Pipeline, func()) {
	p := catalog.NewPipeline(d.Client, d.Favorites, d.Config.PageSize)
	return p, d.Coordinator.Register(p)
}

// NewLanding returns a landing view registered with the coordinator.
func (d *Deps) NewLanding() (*catalog.Landing, func()) {
	l := catalog.NewLanding(d.Client, d.Favorites, catalog.LandingOptions{
		FeaturedCount: d.Config.FeaturedCount,
		RegionCount:   d.Config.RegionCount,
		TypeLimit:     d.Config.TypeLimit,
	})
	return l, d.Coordinator.Register(l)
}

// NewDetail returns a detail view registered with the coordinator.
func (d *Deps) NewDetail() (*catalog.Detail, func()) {
	v := catalog.NewDetail(d.Client, d.Favorites)
	return v, d.Coordinator.Register(v)
}

// ErrNoStore is returned by maintenance commands on the file backend.
var ErrNoStore = errors.New("no bolt store open")
