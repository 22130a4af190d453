package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avishkin/pharmacy/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Medication{}, &models.Order{}, &models.User{}))
	return db
}

func newServices(t *testing.T) (*Catalog, *Inventory) {
	t.Helper()
	db := newTestDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := NewCatalog(db, log)
	ledger := NewLedger(db, log)
	inventory := NewInventory(db, catalog, ledger, log)
	return catalog, inventory
}

func seedParacetamol(t *testing.T, catalog *Catalog) *models.Medication {
	t.Helper()
	med, err := catalog.Add(context.Background(), "Paracetamol", "M101", 25.0, 100)
	require.NoError(t, err)
	return med
}
