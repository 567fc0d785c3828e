package models

import (
	"time"

	"github.com/google/uuid"
)

// CartRecord is the staged allocation cart for one owner. At most one record
// exists per owner; it survives restarts until an explicit clear or a
// successful group submission. The shared fields (project, expiry, notes)
// belong to the pending group, not to any single line.
type CartRecord struct {
	ID        uuid.UUID  `gorm:"column:id;type:text;primaryKey"`
	OwnerID   uuid.UUID  `gorm:"column:owner_id;type:text;not null;uniqueIndex"`
	ProjectID *uuid.UUID `gorm:"column:project_id;type:text"`
	ExpiresAt *time.Time `gorm:"column:expires_at"`
	Notes     *string    `gorm:"column:notes"`
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName matches the goose migrations.
func (CartRecord) TableName() string {
	return "reservation_carts"
}

// CartLine is one staged product/warehouse allocation request. Lines are
// unique per (cart, product, warehouse); duplicate adds merge quantities.
// AvailableStock snapshots the reference-cache ceiling at add/merge time.
type CartLine struct {
	ID             uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	CartID         uuid.UUID `gorm:"column:cart_id;type:text;not null;index;uniqueIndex:idx_cart_product_warehouse,priority:1"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:text;not null;uniqueIndex:idx_cart_product_warehouse,priority:2"`
	ProductName    string    `gorm:"column:product_name;not null"`
	ProductSKU     *string   `gorm:"column:product_sku"`
	WarehouseID    uuid.UUID `gorm:"column:warehouse_id;type:text;not null;uniqueIndex:idx_cart_product_warehouse,priority:3"`
	WarehouseName  string    `gorm:"column:warehouse_name;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	AvailableStock int       `gorm:"column:available_stock;not null"`
	Position       int       `gorm:"column:position;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName matches the goose migrations.
func (CartLine) TableName() string {
	return "reservation_cart_lines"
}
