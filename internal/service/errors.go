package service

import "errors"

var (
	ErrMedicationNotFound = errors.New("medication not found")
	ErrDuplicateCode      = errors.New("medication code already exists")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidOrder       = errors.New("invalid order")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrInvalidInput       = errors.New("invalid input")
)
