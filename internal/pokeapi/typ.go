package pokeapi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/derickschaefer/dex/internal/model"
)

// ListTypes fetches one page of the elemental type list.
func (c *Client) ListTypes(ctx context.Context, limit, offset int) (*model.Page, error) {
	return c.ListEntries(ctx, model.KindType, limit, offset)
}

// GetType fetches a single type by ID.
func (c *Client) GetType(ctx context.Context, id int) (*model.TypeRef, error) {
	if err := checkID(model.KindType, id); err != nil {
		return nil, err
	}

	var raw struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := c.get(ctx, "type/"+strconv.Itoa(id), nil, schemaType, &raw); err != nil {
		return nil, fmt.Errorf("type %d: %w", id, err)
	}
	return &model.TypeRef{Name: raw.Name}, nil
}
