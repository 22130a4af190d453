package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/avishkin/pharmacy/internal/models"
)

// Ledger owns the list of placed orders. Orders are never deleted, only
// flagged canceled; the order ID is the stable cancellation handle.
type Ledger struct {
	DB  *gorm.DB
	Log *slog.Logger
}

func NewLedger(db *gorm.DB, log *slog.Logger) *Ledger {
	return &Ledger{DB: db, Log: log}
}

func (s *Ledger) withTx(tx *gorm.DB) *Ledger {
	return &Ledger{DB: tx, Log: s.Log}
}

func (s *Ledger) Record(ctx context.Context, o *models.Order) error {
	if err := s.DB.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Ledger) Get(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := s.DB.WithContext(ctx).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOrder
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &o, nil
}

func (s *Ledger) ActiveOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).
		Where("canceled = ?", false).
		Order("id ASC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return orders, nil
}

// MarkCanceled flips the canceled flag. An unknown handle or an order that is
// already canceled is ErrInvalidOrder: the flag fires at most once per order.
func (s *Ledger) MarkCanceled(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Canceled {
		return nil, ErrInvalidOrder
	}
	o.Canceled = true
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", o.ID).
		Update("canceled", true).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}

func (s *Ledger) SetAddress(ctx context.Context, id uint, address string) (*models.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Address = address
	if err := s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", o.ID).
		Update("address", address).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}
