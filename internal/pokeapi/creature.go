package pokeapi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/derickschaefer/dex/internal/model"
)

// ListCreatures fetches one page of the creature list.
func (c *Client) ListCreatures(ctx context.Context, limit, offset int) (*model.Page, error) {
	return c.ListEntries(ctx, model.KindCreature, limit, offset)
}

// GetCreature fetches and decodes the detail record for a single creature.
// IsFavorited is always false on the returned value; callers stitch it in.
func (c *Client) GetCreature(ctx context.Context, id int) (*model.Creature, error) {
	if err := checkID(model.KindCreature, id); err != nil {
		return nil, err
	}

	var raw rawCreature
	if err := c.get(ctx, "pokemon/"+strconv.Itoa(id), nil, schemaCreature, &raw); err != nil {
		return nil, fmt.Errorf("creature %d: %w", id, err)
	}
	cr := raw.normalize()
	return &cr, nil
}

type rawCreature struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`
	Types  []struct {
		Slot int `json:"slot"`
		Type struct {
			Name string `json:"name"`
		} `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int `json:"base_stat"`
		Effort   int `json:"effort"`
		Stat     struct {
			Name string `json:"name"`
		} `json:"stat"`
	} `json:"stats"`
	Sprites struct {
		FrontDefault *string `json:"front_default"`
		FrontShiny   *string `json:"front_shiny"`
		Other        *struct {
			OfficialArtwork *struct {
				FrontDefault *string `json:"front_default"`
				FrontShiny   *string `json:"front_shiny"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
}

func (r rawCreature) normalize() model.Creature {
	types := make([]model.TypeRef, len(r.Types))
	for i, t := range r.Types {
		types[i] = model.TypeRef{Name: t.Type.Name}
	}

	stats := make([]model.StatEntry, len(r.Stats))
	for i, s := range r.Stats {
		stats[i] = model.StatEntry{
			StatName:  s.Stat.Name,
			BaseValue: s.BaseStat,
			Effort:    s.Effort,
		}
	}

	var image *string
	if r.Sprites.Other != nil && r.Sprites.Other.OfficialArtwork != nil {
		image = r.Sprites.Other.OfficialArtwork.FrontDefault
	}

	height, weight := r.Height, r.Weight
	return model.Creature{
		ID:       r.ID,
		Name:     r.Name,
		Types:    types,
		ImageURL: image,
		Sprites: &model.Sprites{
			Default: r.Sprites.FrontDefault,
			Shiny:   r.Sprites.FrontShiny,
		},
		Height: &height,
		Weight: &weight,
		Stats:  stats,
	}
}
