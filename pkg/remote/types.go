package remote

import (
	"time"

	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/pkg/enums"
)

// WarehouseStock is the per-warehouse available quantity nested under a
// product in the reference feed.
type WarehouseStock struct {
	WarehouseID uuid.UUID `json:"warehouseId"`
	Quantity    int       `json:"quantity"`
}

// Product is a catalog entry with its per-warehouse stock snapshot.
type Product struct {
	ID     uuid.UUID        `json:"id"`
	Name   string           `json:"name"`
	SKU    *string          `json:"sku,omitempty"`
	Stocks []WarehouseStock `json:"stocks"`
}

type Warehouse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Project struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Active bool      `json:"active"`
}

// ReferenceData is the read-only snapshot the core caches per session.
type ReferenceData struct {
	Products   []Product   `json:"products"`
	Warehouses []Warehouse `json:"warehouses"`
	Projects   []Project   `json:"projects"`
}

type ProductSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	SKU  *string   `json:"sku,omitempty"`
}

type WarehouseSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type UserSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ReservationItem is one server-committed reservation. Warehouse is nil on
// rows predating per-warehouse tracking; such rows render without a
// warehouse but can never be produced by the cart flow.
type ReservationItem struct {
	ID        uuid.UUID               `json:"id"`
	GroupID   uuid.UUID               `json:"groupId"`
	Product   ProductSummary          `json:"product"`
	Warehouse *WarehouseSummary       `json:"warehouse,omitempty"`
	Quantity  int                     `json:"quantity"`
	Status    enums.ReservationStatus `json:"status"`
	ExpiresAt *time.Time              `json:"expiresAt,omitempty"`
	ProjectID *uuid.UUID              `json:"projectId,omitempty"`
	Notes     *string                 `json:"notes,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

// ReservationGroup is a set of items created from one cart submission.
// Group-level fields are shared by every member. User is only populated for
// callers holding the manage permission.
type ReservationGroup struct {
	GroupID    uuid.UUID         `json:"groupId"`
	ProjectID  *uuid.UUID        `json:"projectId,omitempty"`
	ExpiresAt  *time.Time        `json:"expiresAt,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
	Items      []ReservationItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	User       *UserSummary      `json:"user,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// Active reports whether any member is still RESERVED.
func (g ReservationGroup) Active() bool {
	for _, item := range g.Items {
		if item.Status == enums.ReservationStatusReserved {
			return true
		}
	}
	return false
}

// CanReleaseAll reports whether a whole-group release may be offered: every
// member must still be RESERVED. A group with any fulfilled, released or
// cancelled member only admits per-item release of its remaining RESERVED
// members.
func (g ReservationGroup) CanReleaseAll() bool {
	if len(g.Items) == 0 {
		return false
	}
	for _, item := range g.Items {
		if !item.Status.CanRelease() {
			return false
		}
	}
	return true
}

// ReservedItemIDs returns the ids of members still in RESERVED.
func (g ReservationGroup) ReservedItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.Items))
	for _, item := range g.Items {
		if item.Status.CanRelease() {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// CreateLine is one cart line inside a bulk-create request.
type CreateLine struct {
	ProductID   uuid.UUID `json:"productId"`
	WarehouseID uuid.UUID `json:"warehouseId"`
	Quantity    int       `json:"quantity"`
}

// CreateGroupRequest is the atomic bulk-create body: all lines plus the
// shared group fields. The server commits all lines or none.
type CreateGroupRequest struct {
	Lines     []CreateLine `json:"lines"`
	ProjectID *uuid.UUID   `json:"projectId,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
	Notes     *string      `json:"notes,omitempty"`
}

// ReleaseRequest carries the item ids to release in one call.
type ReleaseRequest struct {
	ItemIDs []uuid.UUID `json:"itemIds"`
}

// ListFilters are the ad-hoc filters forwarded verbatim to the list endpoint.
type ListFilters struct {
	Status    *enums.ReservationStatus
	ProjectID *uuid.UUID
	ProductID *uuid.UUID
	UserID    *uuid.UUID
}

// GroupPage is one page of grouped reservations.
type GroupPage struct {
	Groups     []ReservationGroup `json:"groups"`
	NextCursor string             `json:"nextCursor,omitempty"`
}
