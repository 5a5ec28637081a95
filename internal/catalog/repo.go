package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) CreateProduct(ctx context.Context, p Product) (Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = ProductDraft
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, sku, name, price, status, published_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		p.ID, p.SKU, p.Name, p.Price, string(p.Status), p.PublishedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *Repo) CreateVariant(ctx context.Context, v Variant) (Variant, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO variants(id, product_id, sku, name, price, stock)
		VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),$5,$6)
		RETURNING created_at, updated_at`,
		v.ID, v.ProductID, v.SKU, v.Name, v.Price, v.Stock,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return Variant{}, err
	}
	return v, nil
}

func (r *Repo) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id, sku, name, price, status, published_at, created_at, updated_at
		FROM products WHERE id=$1`, id,
	).Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &status, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, err
	}
	p.Status = ProductStatus(status)
	return p, nil
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, sku, name, price, status, published_at, created_at, updated_at
		FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		var status string
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Price, &status,
			&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Status = ProductStatus(status)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) ListVariants(ctx context.Context, productID string) ([]Variant, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, COALESCE(sku,''), COALESCE(name,''), price, stock,
		       created_at, updated_at
		FROM variants WHERE product_id=$1 ORDER BY id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Variant
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.Price,
			&v.Stock, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) GetVariantStock(ctx context.Context, variantID string) (int, error) {
	var stock int
	err := r.DB.QueryRow(ctx, `SELECT stock FROM variants WHERE id=$1`, variantID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrVariantNotFound
	}
	return stock, err
}

// TotalStock sums the stock of every variant of a product; the
// reconciliation anchor on the catalog side.
func (r *Repo) TotalStock(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(stock), 0) FROM variants WHERE product_id=$1`,
		productID).Scan(&total)
	return total, err
}

// AdjustStockTx applies a stock delta to one variant inside the caller's
// transaction. The row is locked for the check-then-update so concurrent
// decrements serialize and never see stale stock. Returns the new stock
// and the parent product id (used for ledger attribution).
func (r *Repo) AdjustStockTx(ctx context.Context, tx pgx.Tx, variantID string, delta int) (int, string, error) {
	var stock int
	var productID string
	err := tx.QueryRow(ctx, `
		SELECT stock, product_id FROM variants WHERE id=$1 FOR UPDATE`,
		variantID).Scan(&stock, &productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", ErrVariantNotFound
	}
	if err != nil {
		return 0, "", err
	}
	if stock+delta < 0 {
		return 0, "", &StockViolationError{
			VariantID: variantID,
			Requested: -delta,
			Available: stock,
		}
	}
	if _, err := tx.Exec(ctx, `
		UPDATE variants SET stock = stock + $2, updated_at = now() WHERE id=$1`,
		variantID, delta); err != nil {
		return 0, "", err
	}
	return stock + delta, productID, nil
}

// AdjustStock is the standalone form for manual corrections made outside
// the order flow.
func (r *Repo) AdjustStock(ctx context.Context, variantID string, delta int) (int, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	stock, _, err := r.AdjustStockTx(ctx, tx, variantID, delta)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return stock, nil
}
