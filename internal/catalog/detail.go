package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/derickschaefer/dex/internal/model"
	"github.com/derickschaefer/dex/internal/util"
)

// CreatureGetter fetches a single creature.
type CreatureGetter interface {
	GetCreature(ctx context.Context, id int) (*model.Creature, error)
}

// StatRow is one base stat prepared for display.
type StatRow struct {
	Label  string  `json:"label"`
	Value  int     `json:"value"`
	Effort int     `json:"effort"`
	Ratio  float64 `json:"ratio"` // Value / StatMax, capped at 1
}

// Detail holds one hydrated creature.
type Detail struct {
	src  CreatureGetter
	favs FavoriteLookup

	mu       sync.Mutex
	creature *model.Creature
	lastErr  string
}

// NewDetail returns an empty detail view.
func NewDetail(src CreatureGetter, favs FavoriteLookup) *Detail {
	return &Detail{src: src, favs: favs}
}

// Load fetches creature id and stitches in its favorite flag. On failure
// the previously held creature is kept.
func (d *Detail) Load(ctx context.Context, id int) error {
	c, err := d.src.GetCreature(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.lastErr = err.Error()
		return err
	}
	c.IsFavorited = d.favs.Contains(c.ID)
	d.creature = c
	d.lastErr = ""
	return nil
}

// Creature returns a copy of the held creature.
func (d *Detail) Creature() (model.Creature, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.creature == nil {
		return model.Creature{}, false
	}
	return *d.creature, true
}

func (d *Detail) LastError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// RefreshFavoriteStatus re-reads the held creature's favorite flag.
func (d *Detail) RefreshFavoriteStatus() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.creature != nil {
		d.creature.IsFavorited = d.favs.Contains(d.creature.ID)
	}
}

// SetFavorited updates the held creature if its ID matches.
func (d *Detail) SetFavorited(id int, favorited bool) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.creature == nil || d.creature.ID != id {
		return 0
	}
	d.creature.IsFavorited = favorited
	return 1
}

// Stats returns the held creature's stats, known stats in canonical order
// followed by unknown ones as reported. Nil when stats are unknown.
func (d *Detail) Stats() []StatRow {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.creature == nil {
		return nil
	}
	return StatRows(d.creature.Stats)
}

// StatRows converts stat entries to display rows.
func StatRows(stats []model.StatEntry) []StatRow {
	if stats == nil {
		return nil
	}
	rows := make([]StatRow, 0, len(stats))
	for _, s := range stats {
		ratio := float64(s.BaseValue) / model.StatMax
		if ratio > 1 {
			ratio = 1
		}
		if ratio < 0 {
			ratio = 0
		}
		rows = append(rows, StatRow{Label: s.Label(), Value: s.BaseValue, Effort: s.Effort, Ratio: ratio})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return model.StatRank(rows[i].Label) < model.StatRank(rows[j].Label)
	})
	return rows
}

// Height formats the held creature's height in metres ("0.7 M").
func (d *Detail) Height() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.creature == nil {
		return util.FormatTenths(nil, "M")
	}
	return util.FormatTenths(d.creature.Height, "M")
}

// Weight formats the held creature's weight in kilograms ("6.9 KG").
func (d *Detail) Weight() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.creature == nil {
		return util.FormatTenths(nil, "KG")
	}
	return util.FormatTenths(d.creature.Weight, "KG")
}
