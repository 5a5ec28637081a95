package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")

	// ErrStockViolation means an adjustment would drive a variant's
	// stock below zero.
	ErrStockViolation = errors.New("stock violation")
)

// StockViolationError carries the shortfall detail for a rejected
// decrement. It unwraps to ErrStockViolation.
type StockViolationError struct {
	VariantID string
	Requested int
	Available int
}

func (e *StockViolationError) Error() string {
	return fmt.Sprintf("stock violation: variant=%s requested=%d available=%d",
		e.VariantID, e.Requested, e.Available)
}

func (e *StockViolationError) Unwrap() error { return ErrStockViolation }
