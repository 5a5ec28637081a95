package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

// CreateOrder inserts an order in status nuevo together with its items,
// snapshotting prices from the catalog at this moment. Items are
// immutable afterwards; only the order's status may change.
func (r *Repo) CreateOrder(ctx context.Context, userID string, items []ItemInput) (Order, error) {
	if len(items) == 0 {
		return Order{}, fmt.Errorf("order needs at least one item")
	}
	for _, it := range items {
		if it.Qty <= 0 {
			return Order{}, fmt.Errorf("invalid qty for product %s", it.ProductID)
		}
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var o Order
	o.ID = uuid.NewString()
	o.UserID = userID
	o.Status = StatusNuevo
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, status)
		VALUES ($1, NULLIF($2,'')::uuid, $3)
		RETURNING created_at, updated_at`,
		o.ID, userID, string(StatusNuevo),
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}

	for _, it := range items {
		productID, price, err := resolvePrice(ctx, tx, it)
		if err != nil {
			return Order{}, err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, variant_id, qty, price)
			VALUES ($1,$2,$3,NULLIF($4,'')::uuid,$5,$6)`,
			uuid.NewString(), o.ID, productID, it.VariantID, it.Qty, price,
		); err != nil {
			return Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

// resolvePrice snapshots the price the buyer pays: the variant override
// when one exists, else the product price. When a variant is given, its
// parent product wins over whatever product id the caller sent.
func resolvePrice(ctx context.Context, tx pgx.Tx, it ItemInput) (string, decimal.Decimal, error) {
	if it.VariantID != "" {
		var productID string
		var override *decimal.Decimal
		var base decimal.Decimal
		err := tx.QueryRow(ctx, `
			SELECT v.product_id, v.price, p.price
			FROM variants v JOIN products p ON p.id = v.product_id
			WHERE v.id=$1`, it.VariantID,
		).Scan(&productID, &override, &base)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", decimal.Decimal{}, fmt.Errorf("variant not found: %s", it.VariantID)
		}
		if err != nil {
			return "", decimal.Decimal{}, err
		}
		if override != nil {
			return productID, *override, nil
		}
		return productID, base, nil
	}

	var price decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT price FROM products WHERE id=$1`, it.ProductID).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", decimal.Decimal{}, fmt.Errorf("product not found: %s", it.ProductID)
	}
	if err != nil {
		return "", decimal.Decimal{}, err
	}
	return it.ProductID, price, nil
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (Order, error) {
	var o Order
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id, COALESCE(user_id::text,''), status, created_at, updated_at
		FROM orders WHERE id=$1`, orderID,
	).Scan(&o.ID, &o.UserID, &status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	return o, nil
}

func (r *Repo) ListItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, COALESCE(variant_id::text,''), qty, price
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.VariantID,
			&it.Qty, &it.Price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
