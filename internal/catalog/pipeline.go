// Package catalog turns paged list entries from the remote catalog into
// fully hydrated creature records and keeps their favorite flags current.
//
// Pipeline drives the paginated creature list:
//
//	Idle → LoadingInitial → Ready ⇄ LoadingMore → Exhausted
//
// Landing loads the three sections of the home view concurrently, and
// Detail holds a single creature.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/derickschaefer/dex/internal/model"
)

// DefaultPageSize is the number of list entries requested per page.
const DefaultPageSize = 20

// CreatureSource is the part of the remote catalog the pipeline reads.
// *pokeapi.Client satisfies it.
type CreatureSource interface {
	ListCreatures(ctx context.Context, limit, offset int) (*model.Page, error)
	GetCreature(ctx context.Context, id int) (*model.Creature, error)
}

// FavoriteLookup reports whether a creature is favorited.
// *favorites.Store satisfies it.
type FavoriteLookup interface {
	Contains(id int) bool
}

// State is a pipeline lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoadingInitial
	StateReady
	StateLoadingMore
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoadingInitial:
		return "loading-initial"
	case StateReady:
		return "ready"
	case StateLoadingMore:
		return "loading-more"
	case StateExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// errStale aborts a page whose load was superseded by a newer LoadInitial.
var errStale = errors.New("superseded by a newer load")

// Pipeline accumulates hydrated creatures page by page. All methods are
// safe for concurrent use; a load already in flight makes further calls of
// the same kind no-ops.
type Pipeline struct {
	src      CreatureSource
	favs     FavoriteLookup
	pageSize int

	mu      sync.Mutex
	state   State
	items   []model.Creature
	offset  int
	hasMore bool
	gen     uint64
	lastErr string
}

// NewPipeline returns an idle pipeline. A pageSize ≤ 0 uses DefaultPageSize.
func NewPipeline(src CreatureSource, favs FavoriteLookup, pageSize int) *Pipeline {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pipeline{src: src, favs: favs, pageSize: pageSize}
}

// ─── Operations ───────────────────────────────────────────────────────────────

// LoadInitial discards everything held, resets the cursor to offset 0 and
// fetches the first page. It is a no-op while another LoadInitial is in
// flight; an in-flight LoadMore is superseded and its result discarded.
//
// On a list failure the pipeline returns to Idle with an empty cursor and
// the error is returned and kept in LastError.
func (p *Pipeline) LoadInitial(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateLoadingInitial {
		p.mu.Unlock()
		return nil
	}
	p.gen++
	gen := p.gen
	p.state = StateLoadingInitial
	p.items = nil
	p.offset = 0
	p.hasMore = false
	p.mu.Unlock()

	records, more, err := p.fetchPage(ctx, gen, 0)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || errors.Is(err, errStale) {
		return nil
	}
	if err != nil {
		p.state = StateIdle
		p.lastErr = err.Error()
		return err
	}
	p.items = records
	p.offset = p.pageSize
	p.settle(more)
	return nil
}

// LoadMore fetches the next page and appends it. It is a no-op unless the
// pipeline is Ready with more data available.
//
// On a list failure the pipeline returns to Ready with offset and hasMore
// unchanged, so the same call can be retried.
func (p *Pipeline) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateReady || !p.hasMore {
		p.mu.Unlock()
		return nil
	}
	gen := p.gen
	offset := p.offset
	p.state = StateLoadingMore
	p.mu.Unlock()

	records, more, err := p.fetchPage(ctx, gen, offset)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || errors.Is(err, errStale) {
		return nil
	}
	if err != nil {
		p.state = StateReady
		p.lastErr = err.Error()
		return err
	}
	p.items = append(p.items, records...)
	p.offset = offset + p.pageSize
	p.settle(more)
	return nil
}

// ReachedEnd is the infinite-scroll trigger: when lastVisibleID is the ID
// of the last record held and more data is available, it loads the next
// page. Any other call is a no-op.
func (p *Pipeline) ReachedEnd(ctx context.Context, lastVisibleID int) error {
	p.mu.Lock()
	trigger := p.state == StateReady && p.hasMore &&
		len(p.items) > 0 && p.items[len(p.items)-1].ID == lastVisibleID
	p.mu.Unlock()
	if !trigger {
		return nil
	}
	return p.LoadMore(ctx)
}

// RefreshFavoriteStatus re-reads the favorite flag of every record held.
func (p *Pipeline) RefreshFavoriteStatus() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.items {
		p.items[i].IsFavorited = p.favs.Contains(p.items[i].ID)
	}
}

// SetFavorited overwrites the favorite flag of every record with id.
func (p *Pipeline) SetFavorited(id int, favorited bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return setFavorited(p.items, id, favorited)
}

// settle records the outcome of a successful page. Callers hold mu.
func (p *Pipeline) settle(more bool) {
	p.hasMore = more
	p.lastErr = ""
	if more {
		p.state = StateReady
	} else {
		p.state = StateExhausted
	}
}

// ─── Observers ────────────────────────────────────────────────────────────────

// Items returns a copy of the accumulated records in load order.
func (p *Pipeline) Items() []model.Creature {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Creature, len(p.items))
	copy(out, p.items)
	return out
}

// Len returns the number of accumulated records.
func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Offset is the list offset the next page will be requested from.
func (p *Pipeline) Offset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset
}

func (p *Pipeline) PageSize() int { return p.pageSize }

// LastError is the message of the most recent failed load, or "" once a
// load has succeeded since.
func (p *Pipeline) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// ─── Page fetch ───────────────────────────────────────────────────────────────

// fetchPage lists one page at offset and hydrates its entries. more is
// true only when the list reports a next page and at least one entry
// hydrated.
func (p *Pipeline) fetchPage(ctx context.Context, gen uint64, offset int) ([]model.Creature, bool, error) {
	page, err := p.src.ListCreatures(ctx, p.pageSize, offset)
	if err != nil {
		slog.Debug("page list failed", "offset", offset, "err", err)
		return nil, false, err
	}

	records, err := hydrate(ctx, p.src, p.favs, page.Results, func() bool { return p.stale(gen) })
	if err != nil {
		return nil, false, err
	}
	slog.Debug("page hydrated", "offset", offset, "entries", len(page.Results), "records", len(records))
	return records, page.HasNext() && len(records) > 0, nil
}

func (p *Pipeline) stale(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen != p.gen
}

// hydrate fetches detail for each entry in order. Entries without a numeric
// ID and entries whose detail fetch fails are skipped; a cancelled context
// or a stale load aborts the whole batch.
func hydrate(ctx context.Context, src CreatureSource, favs FavoriteLookup, refs []model.EntryRef, stale func() bool) ([]model.Creature, error) {
	out := make([]model.Creature, 0, len(refs))
	for _, ref := range refs {
		id, ok := ref.ID()
		if !ok {
			slog.Debug("skipping entry without id", "name", ref.Name, "url", ref.URL)
			continue
		}
		if stale != nil && stale() {
			return nil, errStale
		}
		c, err := src.GetCreature(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("hydrating %s: %w", ref.Name, ctxErr)
			}
			slog.Warn("skipping entry", "id", id, "name", ref.Name, "err", err)
			continue
		}
		c.IsFavorited = favs.Contains(id)
		out = append(out, *c)
	}
	return out, nil
}

func setFavorited(items []model.Creature, id int, favorited bool) int {
	n := 0
	for i := range items {
		if items[i].ID == id {
			items[i].IsFavorited = favorited
			n++
		}
	}
	return n
}
