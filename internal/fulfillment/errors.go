package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition: the requested status is not reachable from
	// the order's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSerializationConflict: transient lock/serialization failure;
	// the caller may retry the whole operation from the top.
	ErrSerializationConflict = errors.New("serialization conflict")
)

type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// mapPgErr translates storage-level failures into the engine's error
// taxonomy. Serialization failures, deadlocks and lock timeouts are
// retryable; everything else passes through.
func mapPgErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %s", ErrSerializationConflict, pgErr.Code)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrSerializationConflict, err)
	}
	return err
}
