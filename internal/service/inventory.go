package service

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/avishkin/pharmacy/internal/models"
)

// Inventory keeps stock and orders consistent: an order is only placed when
// the stock covers it, and cancellation puts exactly the ordered quantity back.
type Inventory struct {
	DB      *gorm.DB
	Catalog *Catalog
	Ledger  *Ledger
	Log     *slog.Logger
}

func NewInventory(db *gorm.DB, catalog *Catalog, ledger *Ledger, log *slog.Logger) *Inventory {
	return &Inventory{DB: db, Catalog: catalog, Ledger: ledger, Log: log}
}

// PlaceOrder decrements stock and records the order in one transaction.
// TotalCost is snapshotted from the current price; later price changes do not
// touch existing orders. Address may be empty here and set afterwards.
func (s *Inventory) PlaceOrder(ctx context.Context, code string, quantity int64, address string) (*models.Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidInput
	}

	var placed models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		catalog := s.Catalog.withTx(tx)
		med, err := catalog.FindByCode(ctx, code)
		if err != nil {
			return err
		}
		if med.Stock < quantity {
			return ErrInsufficientStock
		}
		if _, err := catalog.AdjustStock(ctx, code, -quantity); err != nil {
			return err
		}

		placed = models.Order{
			MedicationID: med.ID,
			Quantity:     quantity,
			TotalCost:    med.Price * float64(quantity),
			Address:      address,
		}
		return s.Ledger.withTx(tx).Record(ctx, &placed)
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("order placed", "order", placed.ID, "medication", code, "quantity", quantity, "total", placed.TotalCost)
	return &placed, nil
}

// CancelOrder marks the order canceled and restores its quantity to stock,
// atomically. A second cancel of the same order fails with ErrInvalidOrder
// and leaves stock untouched.
func (s *Inventory) CancelOrder(ctx context.Context, id uint) (*models.Order, error) {
	var canceled *models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.Ledger.withTx(tx).MarkCanceled(ctx, id)
		if err != nil {
			return err
		}

		var med models.Medication
		if err := tx.First(&med, o.MedicationID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Medication{}).
			Where("id = ?", med.ID).
			Update("stock", med.Stock+o.Quantity).Error; err != nil {
			return err
		}

		canceled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("order canceled", "order", canceled.ID, "restored", canceled.Quantity)
	return canceled, nil
}

func (s *Inventory) SetDeliveryAddress(ctx context.Context, id uint, address string) (*models.Order, error) {
	return s.Ledger.SetAddress(ctx, id, address)
}

// RateMedication is non-fatal to the order flow: an out-of-range value is
// reported and otherwise ignored.
func (s *Inventory) RateMedication(ctx context.Context, code string, value float64) error {
	return s.Catalog.SetRating(ctx, code, value)
}

// UpdateStock is the seller-side adjustment, independent of any order. It
// refuses a delta that would take stock below zero.
func (s *Inventory) UpdateStock(ctx context.Context, code string, delta int64) (*models.Medication, error) {
	var updated *models.Medication
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		catalog := s.Catalog.withTx(tx)
		med, err := catalog.FindByCode(ctx, code)
		if err != nil {
			return err
		}
		if med.Stock+delta < 0 {
			return ErrInsufficientStock
		}
		updated, err = catalog.AdjustStock(ctx, code, delta)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("stock updated", "medication", code, "delta", delta, "stock", updated.Stock)
	return updated, nil
}

func (s *Inventory) ActiveOrders(ctx context.Context) ([]models.Order, error) {
	return s.Ledger.ActiveOrders(ctx)
}
