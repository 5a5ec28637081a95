package catalog

import (
	"errors"
	"fmt"
	"testing"
)

func TestStockViolationErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("apply deduction: %w", &StockViolationError{
		VariantID: "v1", Requested: 10, Available: 4,
	})
	if !errors.Is(err, ErrStockViolation) {
		t.Fatal("expected errors.Is(err, ErrStockViolation)")
	}
	var sv *StockViolationError
	if !errors.As(err, &sv) {
		t.Fatal("expected errors.As to find StockViolationError")
	}
	if sv.Requested != 10 || sv.Available != 4 {
		t.Errorf("unexpected detail: %+v", sv)
	}
}
