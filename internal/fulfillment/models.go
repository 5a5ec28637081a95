package fulfillment

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"` // empty = guest checkout
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is immutable once inserted. Price is the snapshot taken at
// checkout, independent of later catalog price changes. VariantID may
// be empty: such items carry no stock to deduct.
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

type ItemInput struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Qty       int    `json:"qty"`
}
