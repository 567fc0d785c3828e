package listing

import (
	"time"

	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/pkg/enums"
	"github.com/lbricard/stockdesk-backend/pkg/remote"
)

// ItemRow is one rendered reservation line. WarehouseName is empty for rows
// predating per-warehouse tracking.
type ItemRow struct {
	ID            uuid.UUID               `json:"id"`
	ProductName   string                  `json:"productName"`
	ProductSKU    *string                 `json:"productSku,omitempty"`
	WarehouseName string                  `json:"warehouseName,omitempty"`
	Quantity      int                     `json:"quantity"`
	Status        enums.ReservationStatus `json:"status"`
	CanRelease    bool                    `json:"canRelease"`
	ExpiresAt     *time.Time              `json:"expiresAt,omitempty"`
	Notes         *string                 `json:"notes,omitempty"`
}

// GroupRow is one rendered group header. Items is populated for expanded
// groups and for single-item groups, which have nothing to collapse.
type GroupRow struct {
	GroupID       uuid.UUID  `json:"groupId"`
	ProjectID     *uuid.UUID `json:"projectId,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	TotalItems    int        `json:"totalItems"`
	ReservedCount int        `json:"reservedCount"`
	Active        bool       `json:"active"`
	CanReleaseAll bool       `json:"canReleaseAll"`
	UserName      string     `json:"userName,omitempty"`
	Expanded      bool       `json:"expanded"`
	Items         []ItemRow  `json:"items,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Project turns one server page into rendered rows. It applies no filtering
// or sorting of its own: filters and paging were already forwarded to the
// fetch that produced the groups.
func Project(groups []remote.ReservationGroup, expand *ExpandState) []GroupRow {
	rows := make([]GroupRow, 0, len(groups))
	for _, group := range groups {
		expanded := len(group.Items) == 1
		if !expanded && expand != nil {
			expanded = expand.IsOpen(group.GroupID)
		}
		row := GroupRow{
			GroupID:       group.GroupID,
			ProjectID:     group.ProjectID,
			ExpiresAt:     group.ExpiresAt,
			Notes:         group.Notes,
			TotalItems:    group.TotalItems,
			ReservedCount: len(group.ReservedItemIDs()),
			Active:        group.Active(),
			CanReleaseAll: group.CanReleaseAll(),
			Expanded:      expanded,
			CreatedAt:     group.CreatedAt,
		}
		if group.User != nil {
			row.UserName = group.User.Name
		}
		if expanded {
			row.Items = projectItems(group.Items)
		}
		rows = append(rows, row)
	}
	return rows
}

func projectItems(items []remote.ReservationItem) []ItemRow {
	rows := make([]ItemRow, 0, len(items))
	for _, item := range items {
		row := ItemRow{
			ID:          item.ID,
			ProductName: item.Product.Name,
			ProductSKU:  item.Product.SKU,
			Quantity:    item.Quantity,
			Status:      item.Status,
			CanRelease:  item.Status.CanRelease(),
			ExpiresAt:   item.ExpiresAt,
			Notes:       item.Notes,
		}
		if item.Warehouse != nil {
			row.WarehouseName = item.Warehouse.Name
		}
		rows = append(rows, row)
	}
	return rows
}
