package pokeapi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/derickschaefer/dex/internal/model"
)

// ListRegions fetches the region list. The endpoint is small enough that
// the API returns it in one page when no paging parameters are given.
func (c *Client) ListRegions(ctx context.Context) (*model.Page, error) {
	return c.ListEntries(ctx, model.KindRegion, 0, 0)
}

// GetRegion fetches a region and summarises it. LocationCount is the length
// of the embedded location list; locations are not fetched individually.
func (c *Client) GetRegion(ctx context.Context, id int) (*model.Region, error) {
	if err := checkID(model.KindRegion, id); err != nil {
		return nil, err
	}

	var raw struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		Locations []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"locations"`
	}
	if err := c.get(ctx, "region/"+strconv.Itoa(id), nil, schemaRegion, &raw); err != nil {
		return nil, fmt.Errorf("region %d: %w", id, err)
	}
	return &model.Region{
		ID:            raw.ID,
		Name:          raw.Name,
		LocationCount: len(raw.Locations),
	}, nil
}
