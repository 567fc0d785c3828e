package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lbricard/stockdesk-backend/pkg/db/models"
)

// Repository exposes persistence operations for the staged cart.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByOwner loads the owner's cart with its lines in staged order.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("owner_id = ?", ownerID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new cart record.
func (r *Repository) Create(ctx context.Context, record *models.CartRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// Save persists the cart record's own columns (not its lines).
func (r *Repository) Save(ctx context.Context, record *models.CartRecord) error {
	return r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]any{
			"project_id": record.ProjectID,
			"expires_at": record.ExpiresAt,
			"notes":      record.Notes,
		}).Error
}

// SaveLine inserts or updates one cart line.
func (r *Repository) SaveLine(ctx context.Context, line *models.CartLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
		return r.db.WithContext(ctx).Create(line).Error
	}
	return r.db.WithContext(ctx).Save(line).Error
}

// DeleteLine removes one line.
func (r *Repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", lineID).
		Delete(&models.CartLine{}).Error
}

// DeleteByOwner removes the owner's cart and, via the FK cascade, its lines.
func (r *Repository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	var record models.CartRecord
	if err := tx.Where("owner_id = ?", ownerID).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	if err := tx.Where("cart_id = ?", record.ID).Delete(&models.CartLine{}).Error; err != nil {
		return err
	}
	return tx.Delete(&record).Error
}
