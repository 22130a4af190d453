package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/avishkin/pharmacy/internal/models"
)

// Catalog owns the medication set: identity, pricing, stock, rating.
type Catalog struct {
	DB  *gorm.DB
	Log *slog.Logger
}

func NewCatalog(db *gorm.DB, log *slog.Logger) *Catalog {
	return &Catalog{DB: db, Log: log}
}

// withTx returns a view of the catalog bound to an open transaction.
func (s *Catalog) withTx(tx *gorm.DB) *Catalog {
	return &Catalog{DB: tx, Log: s.Log}
}

func (s *Catalog) Add(ctx context.Context, name, code string, price float64, stock int64) (*models.Medication, error) {
	if name == "" || code == "" || price < 0 || stock < 0 {
		return nil, ErrInvalidInput
	}

	var existing models.Medication
	err := s.DB.WithContext(ctx).Where("code = ?", code).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateCode
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	med := models.Medication{Code: code, Name: name, Price: price, Stock: stock}
	if err := s.DB.WithContext(ctx).Create(&med).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	s.Log.Info("medication added", "code", med.Code, "name", med.Name)
	return &med, nil
}

func (s *Catalog) FindByCode(ctx context.Context, code string) (*models.Medication, error) {
	var med models.Medication
	if err := s.DB.WithContext(ctx).Where("code = ?", code).First(&med).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMedicationNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &med, nil
}

// AdjustStock applies stock += delta. It does not keep the result non-negative
// on its own: callers pre-check before passing a negative delta.
func (s *Catalog) AdjustStock(ctx context.Context, code string, delta int64) (*models.Medication, error) {
	med, err := s.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	med.Stock += delta
	if err := s.DB.WithContext(ctx).Model(&models.Medication{}).
		Where("id = ?", med.ID).
		Update("stock", med.Stock).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return med, nil
}

// SetRating accepts values in [1,5] only; anything else leaves the current
// rating untouched and reports ErrInvalidRating.
func (s *Catalog) SetRating(ctx context.Context, code string, value float64) error {
	if value < 1 || value > 5 {
		return ErrInvalidRating
	}
	med, err := s.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Model(&models.Medication{}).
		Where("id = ?", med.ID).
		Update("rating", value).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *Catalog) List(ctx context.Context) ([]models.Medication, error) {
	var meds []models.Medication
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&meds).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return meds, nil
}
