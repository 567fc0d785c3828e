package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lbricard/stockdesk-backend/internal/reference"
	"github.com/lbricard/stockdesk-backend/pkg/db/models"
	apperr "github.com/lbricard/stockdesk-backend/pkg/errors"
)

// CartRepository abstracts persistence so the service can be tested
// against a fake.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.CartRecord, error)
	Create(ctx context.Context, record *models.CartRecord) error
	Save(ctx context.Context, record *models.CartRecord) error
	SaveLine(ctx context.Context, line *models.CartLine) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SnapshotProvider yields the current reference snapshot.
type SnapshotProvider interface {
	Snapshot() *reference.Snapshot
}

// AddLineInput identifies a product/warehouse pair to stage.
type AddLineInput struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	Quantity    int
}

// PendingGroupInput carries the shared fields staged alongside the lines.
// Nil pointers leave the stored value untouched; Clear* flags reset it.
type PendingGroupInput struct {
	ProjectID      *uuid.UUID
	ClearProjectID bool
	ExpiresAt      *time.Time
	ClearExpiresAt bool
	Notes          *string
	ClearNotes     bool
}

// Service is the staged-cart workflow.
type Service interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*models.CartRecord, error)
	AddLine(ctx context.Context, ownerID uuid.UUID, input AddLineInput) (*models.CartRecord, error)
	UpdateQuantity(ctx context.Context, ownerID, lineID uuid.UUID, delta int) (*models.CartRecord, error)
	RemoveLine(ctx context.Context, ownerID, lineID uuid.UUID) (*models.CartRecord, error)
	SetPendingGroupFields(ctx context.Context, ownerID uuid.UUID, input PendingGroupInput) (*models.CartRecord, error)
	Clear(ctx context.Context, ownerID uuid.UUID) error
}

type service struct {
	repo        CartRepository
	tx          TxRunner
	ref         SnapshotProvider
	notesMaxLen int
}

// NewService wires the cart service.
func NewService(repo CartRepository, tx TxRunner, ref SnapshotProvider, notesMaxLen int) (Service, error) {
	if repo == nil {
		return nil, apperr.New(apperr.CodeInternal, "cart repository is required")
	}
	if tx == nil {
		return nil, apperr.New(apperr.CodeInternal, "transaction runner is required")
	}
	if ref == nil {
		return nil, apperr.New(apperr.CodeInternal, "reference snapshot provider is required")
	}
	if notesMaxLen <= 0 {
		notesMaxLen = 250
	}
	return &service{repo: repo, tx: tx, ref: ref, notesMaxLen: notesMaxLen}, nil
}

func (s *service) Get(ctx context.Context, ownerID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.CartRecord{OwnerID: ownerID}, nil
		}
		return nil, apperr.Wrap(apperr.CodeInternal, err, "failed to load cart")
	}
	return record, nil
}

func (s *service) AddLine(ctx context.Context, ownerID uuid.UUID, input AddLineInput) (*models.CartRecord, error) {
	if input.Quantity < 1 {
		return nil, apperr.New(apperr.CodeValidation, "quantity must be at least 1")
	}
	snap := s.ref.Snapshot()
	product, ok := snap.Product(input.ProductID)
	if !ok {
		return nil, apperr.New(apperr.CodeValidation, "unknown product").
			WithDetails(map[string]any{"productId": input.ProductID})
	}
	warehouse, ok := snap.Warehouse(input.WarehouseID)
	if !ok {
		return nil, apperr.New(apperr.CodeValidation, "unknown warehouse").
			WithDetails(map[string]any{"warehouseId": input.WarehouseID})
	}
	available := snap.StockOf(input.ProductID, input.WarehouseID)

	var out *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := s.findOrCreate(ctx, repo, ownerID)
		if err != nil {
			return err
		}

		existing := findLine(record, input.ProductID, input.WarehouseID)
		merged := input.Quantity
		if existing != nil {
			merged += existing.Quantity
		}
		if merged > available {
			return apperr.New(apperr.CodeInsufficientStock, "requested quantity exceeds available stock").
				WithDetails(map[string]any{
					"productId":   input.ProductID,
					"warehouseId": input.WarehouseID,
					"requested":   merged,
					"available":   available,
				})
		}

		if existing != nil {
			existing.Quantity = merged
			existing.AvailableStock = available
			if err := repo.SaveLine(ctx, existing); err != nil {
				return apperr.Wrap(apperr.CodeInternal, err, "failed to update cart line")
			}
		} else {
			line := models.CartLine{
				CartID:         record.ID,
				ProductID:      product.ID,
				ProductName:    product.Name,
				ProductSKU:     product.SKU,
				WarehouseID:    warehouse.ID,
				WarehouseName:  warehouse.Name,
				Quantity:       input.Quantity,
				AvailableStock: available,
				Position:       nextPosition(record),
			}
			if err := repo.SaveLine(ctx, &line); err != nil {
				return apperr.Wrap(apperr.CodeInternal, err, "failed to add cart line")
			}
		}

		out, err = repo.FindByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) UpdateQuantity(ctx context.Context, ownerID, lineID uuid.UUID, delta int) (*models.CartRecord, error) {
	if delta == 0 {
		return s.Get(ctx, ownerID)
	}
	var out *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByOwner(ctx, ownerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.New(apperr.CodeNotFound, "cart is empty")
			}
			return apperr.Wrap(apperr.CodeInternal, err, "failed to load cart")
		}
		line := findLineByID(record, lineID)
		if line == nil {
			return apperr.New(apperr.CodeNotFound, "cart line not found")
		}

		next := line.Quantity + delta
		if next < 1 {
			return apperr.New(apperr.CodeInsufficientStock, "quantity cannot drop below 1").
				WithDetails(map[string]any{
					"productId":   line.ProductID,
					"warehouseId": line.WarehouseID,
					"requested":   next,
					"minimum":     1,
				})
		}
		if next > line.AvailableStock {
			return apperr.New(apperr.CodeInsufficientStock, "requested quantity exceeds available stock").
				WithDetails(map[string]any{
					"productId":   line.ProductID,
					"warehouseId": line.WarehouseID,
					"requested":   next,
					"available":   line.AvailableStock,
				})
		}
		line.Quantity = next
		if err := repo.SaveLine(ctx, line); err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "failed to update cart line")
		}
		out, err = repo.FindByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) RemoveLine(ctx context.Context, ownerID, lineID uuid.UUID) (*models.CartRecord, error) {
	var out *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByOwner(ctx, ownerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.New(apperr.CodeNotFound, "cart is empty")
			}
			return apperr.Wrap(apperr.CodeInternal, err, "failed to load cart")
		}
		line := findLineByID(record, lineID)
		if line == nil {
			return apperr.New(apperr.CodeNotFound, "cart line not found")
		}
		if err := repo.DeleteLine(ctx, line.ID); err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "failed to remove cart line")
		}
		out, err = repo.FindByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) SetPendingGroupFields(ctx context.Context, ownerID uuid.UUID, input PendingGroupInput) (*models.CartRecord, error) {
	if input.Notes != nil && len(*input.Notes) > s.notesMaxLen {
		return nil, apperr.New(apperr.CodeValidation, "notes exceed the maximum length").
			WithDetails(map[string]any{"maxLength": s.notesMaxLen})
	}
	if input.ProjectID != nil {
		snap := s.ref.Snapshot()
		if _, ok := snap.Project(*input.ProjectID); !ok {
			return nil, apperr.New(apperr.CodeValidation, "unknown or inactive project").
				WithDetails(map[string]any{"projectId": *input.ProjectID})
		}
	}

	var out *models.CartRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := s.findOrCreate(ctx, repo, ownerID)
		if err != nil {
			return err
		}
		switch {
		case input.ClearProjectID:
			record.ProjectID = nil
		case input.ProjectID != nil:
			record.ProjectID = input.ProjectID
		}
		switch {
		case input.ClearExpiresAt:
			record.ExpiresAt = nil
		case input.ExpiresAt != nil:
			record.ExpiresAt = input.ExpiresAt
		}
		switch {
		case input.ClearNotes:
			record.Notes = nil
		case input.Notes != nil:
			record.Notes = input.Notes
		}
		if err := repo.Save(ctx, record); err != nil {
			return apperr.Wrap(apperr.CodeInternal, err, "failed to save cart")
		}
		out, err = repo.FindByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Clear(ctx context.Context, ownerID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteByOwner(ctx, ownerID)
	})
	if err != nil {
		return apperr.Wrap(apperr.CodeInternal, err, "failed to clear cart")
	}
	return nil
}

func (s *service) findOrCreate(ctx context.Context, repo CartRepository, ownerID uuid.UUID) (*models.CartRecord, error) {
	record, err := repo.FindByOwner(ctx, ownerID)
	if err == nil {
		return record, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "failed to load cart")
	}
	record = &models.CartRecord{ID: uuid.New(), OwnerID: ownerID}
	if err := repo.Create(ctx, record); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "failed to create cart")
	}
	return record, nil
}

func findLine(record *models.CartRecord, productID, warehouseID uuid.UUID) *models.CartLine {
	for i := range record.Lines {
		line := &record.Lines[i]
		if line.ProductID == productID && line.WarehouseID == warehouseID {
			return line
		}
	}
	return nil
}

func findLineByID(record *models.CartRecord, lineID uuid.UUID) *models.CartLine {
	for i := range record.Lines {
		if record.Lines[i].ID == lineID {
			return &record.Lines[i]
		}
	}
	return nil
}

func nextPosition(record *models.CartRecord) int {
	max := 0
	for _, line := range record.Lines {
		if line.Position > max {
			max = line.Position
		}
	}
	return max + 1
}
