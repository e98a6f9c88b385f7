// Package model defines the canonical data types used throughout dex.
// These types are the single source of truth for all catalog entities and
// the result envelope that every command returns.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/derickschaefer/dex/internal/util"
)

// ─── Catalog Kinds ────────────────────────────────────────────────────────────

// Kind identifies one of the catalog's list endpoints.
type Kind string

const (
	KindCreature Kind = "creature"
	KindType     Kind = "type"
	KindRegion   Kind = "region"
)

// Path returns the API path segment for the kind.
func (k Kind) Path() string {
	switch k {
	case KindCreature:
		return "pokemon"
	case KindType:
		return "type"
	case KindRegion:
		return "region"
	}
	return ""
}

// ParseKind maps a user-supplied name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "creature", "creatures", "pokemon":
		return KindCreature, nil
	case "type", "types":
		return KindType, nil
	case "region", "regions":
		return KindRegion, nil
	}
	return "", fmt.Errorf("unknown kind %q: expected creature|type|region", s)
}

// ─── List Pages ───────────────────────────────────────────────────────────────

// EntryRef is a lightweight list-page entry.
type EntryRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ID extracts the identifier from the last numeric path segment of URL.
// https://pokeapi.co/api/v2/pokemon/25/ → (25, true).
// Entries whose trailing segment is not a plain positive decimal number
// report false and must be skipped by callers.
func (e EntryRef) ID() (int, bool) {
	clean := strings.Trim(e.URL, "/")
	if clean == "" {
		return 0, false
	}
	last := clean
	if i := strings.LastIndex(clean, "/"); i >= 0 {
		last = clean[i+1:]
	}
	for i := 0; i < len(last); i++ {
		if last[i] < '0' || last[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(last)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Page is one slice of a list endpoint.
// Next is nil when the upstream reports no further page.
type Page struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []EntryRef `json:"results"`
}

// HasNext reports whether the upstream advertised another page.
func (p *Page) HasNext() bool {
	return p != nil && p.Next != nil && *p.Next != ""
}

// ─── Creatures ────────────────────────────────────────────────────────────────

// TypeRef names an elemental type.
type TypeRef struct {
	Name string `json:"name"`
}

// DisplayName returns the title-cased type name ("grass" → "Grass").
func (t TypeRef) DisplayName() string {
	return util.Title(t.Name)
}

// StatMax is the upper bound of a base stat, used to scale stat bars.
const StatMax = 255

// statLabels maps upstream stat names to fixed display labels.
var statLabels = map[string]string{
	"hp":              "HP",
	"attack":          "ATK",
	"defense":         "DEF",
	"special-attack":  "SP.ATK",
	"special-defense": "SP.DEF",
	"speed":           "SPD",
}

// statOrder is the display order for known labels. Unknown stats follow.
var statOrder = []string{"HP", "ATK", "DEF", "SP.ATK", "SP.DEF", "SPD"}

// StatEntry is one base stat of a creature.
type StatEntry struct {
	StatName  string `json:"stat_name"`
	BaseValue int    `json:"base_value"`
	Effort    int    `json:"effort"`
}

// Label returns the display label. Unrecognised stat names are upper-cased
// rather than dropped.
func (s StatEntry) Label() string {
	if l, ok := statLabels[s.StatName]; ok {
		return l
	}
	return strings.ToUpper(s.StatName)
}

// StatRank returns the sort position of a label; unknown labels sort last.
func StatRank(label string) int {
	for i, l := range statOrder {
		if l == label {
			return i
		}
	}
	return len(statOrder)
}

// Sprites holds the small front-facing sprite URLs.
type Sprites struct {
	Default *string `json:"default"`
	Shiny   *string `json:"shiny"`
}

// Creature is a fully hydrated catalog record. IsFavorited is not part of
// the remote representation; it is stitched in from the favorites store.
type Creature struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Types       []TypeRef   `json:"types"`
	ImageURL    *string     `json:"image_url"`
	Sprites     *Sprites    `json:"sprites"`
	Height      *int        `json:"height"`
	Weight      *int        `json:"weight"`
	Stats       []StatEntry `json:"stats"`
	IsFavorited bool        `json:"is_favorited"`
}

// FormattedNumber returns the catalog number, e.g. "#25".
func (c Creature) FormattedNumber() string {
	return "#" + strconv.Itoa(c.ID)
}

// DisplayName returns the title-cased name.
func (c Creature) DisplayName() string {
	return util.Title(c.Name)
}

// TypeNames returns the display names of the creature's types, in order.
func (c Creature) TypeNames() []string {
	names := make([]string, len(c.Types))
	for i, t := range c.Types {
		names[i] = t.DisplayName()
	}
	return names
}

// ─── Regions ──────────────────────────────────────────────────────────────────

// Region summarises a region. LocationCount is taken from the detail
// response at hydration time.
type Region struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LocationCount int    `json:"location_count"`
}

// DisplayName returns the name with its first letter upper-cased.
func (r Region) DisplayName() string {
	return util.Title(r.Name)
}

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries performance metadata for a command result.
type ResultStats struct {
	DurationMs int64 `json:"duration_ms"`
	Items      int   `json:"items"`
	Pages      int   `json:"pages,omitempty"`
}

// Result is the uniform envelope returned by every command.
// The Data field holds the typed payload; Kind identifies what is in it.
// Renderers switch on Kind to format output appropriately.
type Result struct {
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Command     string      `json:"command"`
	Data        interface{} `json:"data"`
	Warnings    []string    `json:"warnings,omitempty"`
	Stats       ResultStats `json:"stats"`
}

// Kind constants for Result.Kind.
const (
	ResultCreatures = "creatures"
	ResultCreature  = "creature"
	ResultRegions   = "regions"
	ResultTypes     = "types"
	ResultFavorites = "favorites"
	ResultLanding   = "landing"
)

// Landing bundles the three sections of the landing view.
type Landing struct {
	Featured []Creature `json:"featured"`
	Types    []string   `json:"types"`
	Regions  []Region   `json:"regions"`
}
