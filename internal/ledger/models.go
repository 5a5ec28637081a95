package ledger

import "time"

// Movement is one append-only stock ledger row. Negative deltas are
// sales, positive deltas are restocks or corrections. Rows are never
// updated or deleted.
type Movement struct {
	ID        int64     `json:"id"`
	ProductID string    `json:"product_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Reconciliation reports the ledger view of a product against its
// current variant stock. ImpliedBaseline is the stock level the ledger
// implies existed before the first recorded movement:
// CurrentStock == ImpliedBaseline + NetDelta.
type Reconciliation struct {
	ProductID       string `json:"product_id"`
	NetDelta        int    `json:"net_delta"`
	CurrentStock    int    `json:"current_stock"`
	ImpliedBaseline int    `json:"implied_baseline"`
}
