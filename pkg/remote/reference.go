package remote

import (
	"context"
	"net/http"
)

// FetchReference pulls the products (with nested per-warehouse stock),
// warehouses and active projects in one round trip.
func (c *Client) FetchReference(ctx context.Context) (*ReferenceData, error) {
	var out ReferenceData
	if err := c.do(ctx, http.MethodGet, "/api/v1/reference", nil, nil, &out, "reference"); err != nil {
		return nil, err
	}
	return &out, nil
}
