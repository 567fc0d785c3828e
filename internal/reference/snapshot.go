package reference

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lbricard/stockdesk-backend/pkg/remote"
)

type stockKey struct {
	productID   uuid.UUID
	warehouseID uuid.UUID
}

// Snapshot is a point-in-time, read-only view of the reference data. It is
// advisory: the reservation server re-validates everything at submission, so
// a stale snapshot can at worst reject a line the server would have taken.
type Snapshot struct {
	products   map[uuid.UUID]remote.Product
	warehouses map[uuid.UUID]remote.Warehouse
	projects   map[uuid.UUID]remote.Project
	stocks     map[stockKey]int
	loadedAt   time.Time
}

// NewSnapshot indexes one reference payload. A nil payload yields an empty
// snapshot where every lookup misses and every stock reads 0.
func NewSnapshot(data *remote.ReferenceData) *Snapshot {
	snap := &Snapshot{
		products:   map[uuid.UUID]remote.Product{},
		warehouses: map[uuid.UUID]remote.Warehouse{},
		projects:   map[uuid.UUID]remote.Project{},
		stocks:     map[stockKey]int{},
		loadedAt:   time.Now(),
	}
	if data == nil {
		return snap
	}
	for _, product := range data.Products {
		snap.products[product.ID] = product
		for _, stock := range product.Stocks {
			snap.stocks[stockKey{productID: product.ID, warehouseID: stock.WarehouseID}] = stock.Quantity
		}
	}
	for _, warehouse := range data.Warehouses {
		snap.warehouses[warehouse.ID] = warehouse
	}
	for _, project := range data.Projects {
		if project.Active {
			snap.projects[project.ID] = project
		}
	}
	return snap
}

// StockOf returns the cached available quantity for a product/warehouse
// pair, 0 when the pair is unknown.
func (s *Snapshot) StockOf(productID, warehouseID uuid.UUID) int {
	if s == nil {
		return 0
	}
	return s.stocks[stockKey{productID: productID, warehouseID: warehouseID}]
}

// Product returns the catalog entry for the given id.
func (s *Snapshot) Product(id uuid.UUID) (remote.Product, bool) {
	if s == nil {
		return remote.Product{}, false
	}
	product, ok := s.products[id]
	return product, ok
}

// Warehouse returns the warehouse for the given id.
func (s *Snapshot) Warehouse(id uuid.UUID) (remote.Warehouse, bool) {
	if s == nil {
		return remote.Warehouse{}, false
	}
	warehouse, ok := s.warehouses[id]
	return warehouse, ok
}

// Project returns the active project for the given id. Inactive projects are
// dropped at index time and read as unknown.
func (s *Snapshot) Project(id uuid.UUID) (remote.Project, bool) {
	if s == nil {
		return remote.Project{}, false
	}
	project, ok := s.projects[id]
	return project, ok
}

// Projects returns the active projects sorted by name.
func (s *Snapshot) Projects() []remote.Project {
	if s == nil {
		return nil
	}
	out := make([]remote.Project, 0, len(s.projects))
	for _, project := range s.projects {
		out = append(out, project)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Products returns the catalog sorted by name.
func (s *Snapshot) Products() []remote.Product {
	if s == nil {
		return nil
	}
	out := make([]remote.Product, 0, len(s.products))
	for _, product := range s.products {
		out = append(out, product)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Warehouses returns the warehouses sorted by name.
func (s *Snapshot) Warehouses() []remote.Warehouse {
	if s == nil {
		return nil
	}
	out := make([]remote.Warehouse, 0, len(s.warehouses))
	for _, warehouse := range s.warehouses {
		out = append(out, warehouse)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LoadedAt reports when the snapshot was indexed.
func (s *Snapshot) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}
