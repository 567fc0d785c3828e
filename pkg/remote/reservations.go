package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/pkg/pagination"
	"github.com/lbricard/stockdesk-backend/pkg/patch"
)

// CreateGroup submits all cart lines as one atomic grouped reservation.
func (c *Client) CreateGroup(ctx context.Context, req CreateGroupRequest) (*ReservationGroup, error) {
	var out ReservationGroup
	if err := c.do(ctx, http.MethodPost, "/api/v1/reservations/bulk", nil, req, &out, "bulk_create"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItem sends a diff-only partial update for one reservation item.
func (c *Client) UpdateItem(ctx context.Context, itemID uuid.UUID, diff patch.Payload) (*ReservationItem, error) {
	var out ReservationItem
	path := fmt.Sprintf("/api/v1/reservations/items/%s", itemID)
	if err := c.do(ctx, http.MethodPost, path, nil, diff, &out, "update_item"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGroup sends a diff-only partial update for a group's shared fields,
// optionally carrying per-item quantity changes under "items".
func (c *Client) UpdateGroup(ctx context.Context, groupID uuid.UUID, diff patch.Payload) (*ReservationGroup, error) {
	var out ReservationGroup
	path := fmt.Sprintf("/api/v1/reservations/groups/%s", groupID)
	if err := c.do(ctx, http.MethodPost, path, nil, diff, &out, "update_group"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Release requests the RESERVED -> RELEASED transition for the given items.
func (c *Client) Release(ctx context.Context, itemIDs []uuid.UUID) ([]ReservationItem, error) {
	var out struct {
		Items []ReservationItem `json:"items"`
	}
	req := ReleaseRequest{ItemIDs: itemIDs}
	if err := c.do(ctx, http.MethodPatch, "/api/v1/reservations/release", nil, req, &out, "release"); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetGroup re-fetches one group, the authoritative view after any mutation.
func (c *Client) GetGroup(ctx context.Context, groupID uuid.UUID) (*ReservationGroup, error) {
	var out ReservationGroup
	path := fmt.Sprintf("/api/v1/reservations/groups/%s", groupID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out, "get_group"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListGroups fetches one page of grouped reservations. Filters and paging
// are forwarded to the server; the client does no sorting of its own.
func (c *Client) ListGroups(ctx context.Context, filters ListFilters, page pagination.Params) (*GroupPage, error) {
	query := url.Values{}
	if filters.Status != nil {
		query.Set("status", filters.Status.String())
	}
	if filters.ProjectID != nil {
		query.Set("projectId", filters.ProjectID.String())
	}
	if filters.ProductID != nil {
		query.Set("productId", filters.ProductID.String())
	}
	if filters.UserID != nil {
		query.Set("userId", filters.UserID.String())
	}
	query.Set("limit", fmt.Sprintf("%d", pagination.NormalizeLimit(page.Limit)))
	if page.Cursor != "" {
		query.Set("cursor", page.Cursor)
	}

	var out GroupPage
	if err := c.do(ctx, http.MethodGet, "/api/v1/reservations/groups", query, nil, &out, "list_groups"); err != nil {
		return nil, err
	}
	return &out, nil
}
