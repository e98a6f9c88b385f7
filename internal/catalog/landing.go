package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/util"
)

// Landing section defaults.
const (
	DefaultFeaturedCount = 9
	DefaultRegionCount   = 6
	DefaultTypeLimit     = 100
)

// LandingSource is the part of the remote catalog the landing view reads.
// *pokeapi.Client satisfies it.
type LandingSource interface {
	CreatureSource
	ListTypes(ctx context.Context, limit, offset int) (*model.Page, error)
	ListRegions(ctx context.Context) (*model.Page, error)
	GetRegion(ctx context.Context, id int) (*model.Region, error)
}

// LandingOptions sizes the landing sections. Zero values use the defaults.
type LandingOptions struct {
	FeaturedCount int
	RegionCount   int
	TypeLimit     int
}

func (o LandingOptions) withDefaults() LandingOptions {
	if o.FeaturedCount <= 0 {
		o.FeaturedCount = DefaultFeaturedCount
	}
	if o.RegionCount <= 0 {
		o.RegionCount = DefaultRegionCount
	}
	if o.TypeLimit <= 0 {
		o.TypeLimit = DefaultTypeLimit
	}
	return o
}

// Landing holds the home view: a few featured creatures, the type catalog
// and a handful of regions. The three sections share no state and are
// fetched concurrently; one failing section leaves the others intact.
type Landing struct {
	src  LandingSource
	favs FavoriteLookup
	opts LandingOptions

	mu       sync.Mutex
	loading  bool
	featured []model.Creature
	types    []string
	regions  []model.Region
	lastErr  string
}

// NewLanding returns an empty landing view.
func NewLanding(src LandingSource, favs FavoriteLookup, opts LandingOptions) *Landing {
	return &Landing{src: src, favs: favs, opts: opts.withDefaults()}
}

// Load fetches all three sections. Sections that fail keep their previous
// contents; the joined error is returned and kept in LastError. A Load
// while another is in flight is a no-op.
func (l *Landing) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.loading {
		l.mu.Unlock()
		return nil
	}
	l.loading = true
	l.mu.Unlock()

	var (
		featured                    []model.Creature
		types                       []string
		regions                     []model.Region
		featErr, typeErr, regionErr error
	)

	// Sections report through their own error slots; no section cancels another.
	var g errgroup.Group
	g.Go(func() error {
		featured, featErr = l.loadFeatured(ctx)
		return nil
	})
	g.Go(func() error {
		types, typeErr = l.loadTypes(ctx)
		return nil
	})
	g.Go(func() error {
		regions, regionErr = l.loadRegions(ctx)
		return nil
	})
	_ = g.Wait()

	var errs util.MultiError
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if featErr == nil {
		l.featured = featured
	} else {
		errs.Add(fmt.Errorf("featured: %w", featErr))
	}
	if typeErr == nil {
		l.types = types
	} else {
		errs.Add(fmt.Errorf("types: %w", typeErr))
	}
	if regionErr == nil {
		l.regions = regions
	} else {
		errs.Add(fmt.Errorf("regions: %w", regionErr))
	}

	err := errs.Err()
	if err != nil {
		l.lastErr = err.Error()
		return err
	}
	l.lastErr = ""
	return nil
}

func (l *Landing) loadFeatured(ctx context.Context) ([]model.Creature, error) {
	page, err := l.src.ListCreatures(ctx, l.opts.FeaturedCount, 0)
	if err != nil {
		return nil, err
	}
	return hydrate(ctx, l.src, l.favs, page.Results, nil)
}

func (l *Landing) loadTypes(ctx context.Context) ([]string, error) {
	page, err := l.src.ListTypes(ctx, l.opts.TypeLimit, 0)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(page.Results))
	for _, r := range page.Results {
		names = append(names, r.Name)
	}
	return names, nil
}

// loadRegions hydrates the first RegionCount regions in list order. A
// region whose detail fetch fails is skipped.
func (l *Landing) loadRegions(ctx context.Context) ([]model.Region, error) {
	page, err := l.src.ListRegions(ctx)
	if err != nil {
		return nil, err
	}
	refs := page.Results
	if len(refs) > l.opts.RegionCount {
		refs = refs[:l.opts.RegionCount]
	}

	out := make([]model.Region, 0, len(refs))
	for _, ref := range refs {
		id, ok := ref.ID()
		if !ok {
			continue
		}
		r, err := l.src.GetRegion(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			slog.Warn("skipping region", "id", id, "name", ref.Name, "err", err)
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

// ─── Observers ────────────────────────────────────────────────────────────────

// Featured returns a copy of the featured creatures.
func (l *Landing) Featured() []model.Creature {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Creature, len(l.featured))
	copy(out, l.featured)
	return out
}

// Types returns the type names in catalog order.
func (l *Landing) Types() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.types...)
}

// Regions returns a copy of the region summaries.
func (l *Landing) Regions() []model.Region {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Region(nil), l.regions...)
}

// Snapshot returns all three sections as one value for rendering.
func (l *Landing) Snapshot() model.Landing {
	l.mu.Lock()
	defer l.mu.Unlock()
	return model.Landing{
		Featured: append([]model.Creature(nil), l.featured...),
		Types:    append([]string(nil), l.types...),
		Regions:  append([]model.Region(nil), l.regions...),
	}
}

func (l *Landing) LastError() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// RefreshFavoriteStatus re-reads the favorite flag of every featured creature.
func (l *Landing) RefreshFavoriteStatus() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.featured {
		l.featured[i].IsFavorited = l.favs.Contains(l.featured[i].ID)
	}
}

// SetFavorited overwrites the favorite flag of featured creatures with id.
func (l *Landing) SetFavorited(id int, favorited bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return setFavorited(l.featured, id, favorited)
}
