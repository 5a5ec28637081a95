package fulfillment

import (
	"encoding/json"
	"time"
)

const (
	EventPaymentConfirmed = "PaymentConfirmed"
	EventOrderPaid        = "OrderPaid"
	EventOrderRejected    = "OrderRejected"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// PaymentConfirmedPayload is what the payment collaborator publishes
// after capturing payment. The worker reacts by driving the order into
// pagado.
type PaymentConfirmedPayload struct {
	OrderID     string `json:"order_id"`
	PaymentRef  string `json:"payment_ref"`
	AmountCents int    `json:"amount_cents"`
}

type OrderPaidPayload struct {
	OrderID string `json:"order_id"`
	Status  Status `json:"status"`
}

// RejectedDetail mirrors the shortfall that blocked one item's
// decrement.
type RejectedDetail struct {
	VariantID string `json:"variant_id"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

type OrderRejectedPayload struct {
	OrderID string           `json:"order_id"`
	Reason  string           `json:"reason"` // e.g. OUT_OF_STOCK
	Details []RejectedDetail `json:"details,omitempty"`
}
