package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lbricard/stockdesk-backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.CartRecord{}, &models.CartLine{}))
	t.Cleanup(func() {
		sqlDB, err := conn.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))
	owner := uuid.New()

	_, err := repo.FindByOwner(ctx, owner)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	record := &models.CartRecord{OwnerID: owner}
	require.NoError(t, repo.Create(ctx, record))
	require.NotEqual(t, uuid.Nil, record.ID)

	sku := "VIS-M8"
	first := &models.CartLine{
		CartID:         record.ID,
		ProductID:      uuid.New(),
		ProductName:    "Vis M8",
		ProductSKU:     &sku,
		WarehouseID:    uuid.New(),
		WarehouseName:  "Entrepôt Nord",
		Quantity:       5,
		AvailableStock: 10,
		Position:       1,
	}
	require.NoError(t, repo.SaveLine(ctx, first))

	second := &models.CartLine{
		CartID:         record.ID,
		ProductID:      uuid.New(),
		ProductName:    "Écrou M8",
		WarehouseID:    first.WarehouseID,
		WarehouseName:  "Entrepôt Nord",
		Quantity:       2,
		AvailableStock: 4,
		Position:       2,
	}
	require.NoError(t, repo.SaveLine(ctx, second))

	loaded, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)
	require.Equal(t, "Vis M8", loaded.Lines[0].ProductName)
	require.Equal(t, "Écrou M8", loaded.Lines[1].ProductName)

	firstLine := loaded.Lines[0]
	firstLine.Quantity = 9
	require.NoError(t, repo.SaveLine(ctx, &firstLine))

	loaded, err = repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, 9, loaded.Lines[0].Quantity)

	require.NoError(t, repo.DeleteLine(ctx, second.ID))
	loaded, err = repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
}

func TestRepositorySavesSharedFields(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))
	owner := uuid.New()

	record := &models.CartRecord{OwnerID: owner}
	require.NoError(t, repo.Create(ctx, record))

	project := uuid.New()
	notes := "commande urgente"
	record.ProjectID = &project
	record.Notes = &notes
	require.NoError(t, repo.Save(ctx, record))

	loaded, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	require.NotNil(t, loaded.ProjectID)
	require.Equal(t, project, *loaded.ProjectID)
	require.Equal(t, notes, *loaded.Notes)

	record.ProjectID = nil
	record.Notes = nil
	require.NoError(t, repo.Save(ctx, record))

	loaded, err = repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	require.Nil(t, loaded.ProjectID)
	require.Nil(t, loaded.Notes)
}

func TestRepositoryDeleteByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(openTestDB(t))
	owner := uuid.New()

	record := &models.CartRecord{OwnerID: owner}
	require.NoError(t, repo.Create(ctx, record))
	require.NoError(t, repo.SaveLine(ctx, &models.CartLine{
		CartID:         record.ID,
		ProductID:      uuid.New(),
		ProductName:    "Rondelle",
		WarehouseID:    uuid.New(),
		WarehouseName:  "Entrepôt Sud",
		Quantity:       1,
		AvailableStock: 3,
		Position:       1,
	}))

	require.NoError(t, repo.DeleteByOwner(ctx, owner))
	_, err := repo.FindByOwner(ctx, owner)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Clearing an absent cart is a no-op.
	require.NoError(t, repo.DeleteByOwner(ctx, owner))

	var count int64
	require.NoError(t, repo.db.Model(&models.CartLine{}).Count(&count).Error)
	require.Zero(t, count)
}
