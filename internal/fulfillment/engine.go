package fulfillment

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mitienda/fulfillment/internal/catalog"
	"github.com/mitienda/fulfillment/internal/ledger"
)

// ReasonSaleConfirmed is the ledger reason written for every deduction
// caused by an order entering pagado.
const ReasonSaleConfirmed = "Venta confirmada"

// Engine drives order status transitions and, for the one transition
// into pagado, applies the stock deduction and ledger append in the
// same transaction as the status write.
type Engine struct {
	DB      *pgxpool.Pool
	Catalog *catalog.Repo
	Ledger  *ledger.Repo
}

// SetStatus moves an order to next.
//
// The order row is locked for the whole check-then-act sequence, so two
// concurrent transitions on the same order serialize: exactly one can
// observe a non-pagado previous status and deduct.
//
// Writing the status the order already has is a benign no-op; in
// particular a repeated pagado never deducts twice. Any other
// unreachable target fails with ErrInvalidTransition.
func (e *Engine) SetStatus(ctx context.Context, orderID string, next Status) (Order, error) {
	if !next.Valid() {
		return Order{}, &InvalidTransitionError{From: "", To: next}
	}

	tx, err := e.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, mapPgErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var o Order
	var cur string
	err = tx.QueryRow(ctx, `
		SELECT id, COALESCE(user_id::text,''), status, created_at, updated_at
		FROM orders WHERE id=$1 FOR UPDATE`, orderID,
	).Scan(&o.ID, &o.UserID, &cur, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, mapPgErr(err)
	}
	o.Status = Status(cur)

	if o.Status == next {
		return o, nil
	}
	if !CanTransition(o.Status, next) {
		return Order{}, &InvalidTransitionError{From: o.Status, To: next}
	}

	if IsPaidTransition(o.Status, next) {
		if err := e.applyPaidDeduction(ctx, tx, orderID); err != nil {
			return Order{}, mapPgErr(err)
		}
	}

	err = tx.QueryRow(ctx, `
		UPDATE orders SET status=$2, updated_at=now()
		WHERE id=$1 RETURNING updated_at`,
		orderID, string(next)).Scan(&o.UpdatedAt)
	if err != nil {
		return Order{}, mapPgErr(err)
	}
	o.Status = next

	if err := tx.Commit(ctx); err != nil {
		return Order{}, mapPgErr(err)
	}
	return o, nil
}

type deductionItem struct {
	VariantID string
	Qty       int
}

// applyPaidDeduction decrements variant stock for every item that
// references a variant and appends one ledger row per decrement.
// All-or-nothing: any shortfall surfaces as a StockViolationError and
// the caller rolls back everything, including the status write.
//
// Items without a variant reference are skipped entirely: no stock to
// decrement, no ledger row (the ledger records only movements that
// actually happened).
func (e *Engine) applyPaidDeduction(ctx context.Context, tx pgx.Tx, orderID string) error {
	rows, err := tx.Query(ctx, `
		SELECT COALESCE(variant_id::text,''), qty
		FROM order_items WHERE order_id=$1`, orderID)
	if err != nil {
		return err
	}
	var items []deductionItem
	for rows.Next() {
		var it deductionItem
		if err := rows.Scan(&it.VariantID, &it.Qty); err != nil {
			rows.Close()
			return err
		}
		if it.VariantID != "" {
			items = append(items, it)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// Lock variants in a stable order so two orders paying at the same
	// time cannot deadlock on each other's rows.
	sort.Slice(items, func(i, j int) bool { return items[i].VariantID < items[j].VariantID })

	for _, it := range items {
		_, productID, err := e.Catalog.AdjustStockTx(ctx, tx, it.VariantID, -it.Qty)
		if err != nil {
			return translateCheck(err)
		}
		if err := e.Ledger.AppendTx(ctx, tx, productID, -it.Qty, ReasonSaleConfirmed); err != nil {
			return err
		}
	}
	return nil
}

// translateCheck maps the database CHECK (stock >= 0) firing into the
// same error the in-transaction guard produces. The guard normally
// rejects first; the constraint is the backstop.
func translateCheck(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23514" {
		return catalog.ErrStockViolation
	}
	return err
}
