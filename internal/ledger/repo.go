package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// AppendTx inserts one movement inside the caller's transaction, so the
// ledger row commits or rolls back together with the stock change it
// records.
func (r *Repo) AppendTx(ctx context.Context, tx pgx.Tx, productID string, delta int, reason string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO inventory_movements(product_id, delta, reason)
		VALUES ($1,$2,$3)`, productID, delta, reason)
	return err
}

// Reconstruct returns every movement for a product ordered by creation
// time. Re-querying against an unchanged database yields identical
// results; nothing here mutates.
func (r *Repo) Reconstruct(ctx context.Context, productID string) ([]Movement, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, delta, reason, created_at
		FROM inventory_movements
		WHERE product_id=$1
		ORDER BY created_at, id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Delta, &m.Reason, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// NetDelta sums all recorded deltas for a product.
func (r *Repo) NetDelta(ctx context.Context, productID string) (int, error) {
	var net int
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(delta), 0) FROM inventory_movements WHERE product_id=$1`,
		productID).Scan(&net)
	return net, err
}
