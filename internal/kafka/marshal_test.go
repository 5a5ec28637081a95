package kafka

import (
	"encoding/json"
	"testing"
)

type testPayload struct {
	OrderID string `json:"order_id"`
	Qty     int    `json:"qty"`
}

func TestUnwrapPayload(t *testing.T) {
	raw := json.RawMessage(MustMarshal(testPayload{OrderID: "o1", Qty: 3}))

	p, err := UnwrapPayload[testPayload](raw)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if p.OrderID != "o1" || p.Qty != 3 {
		t.Errorf("unexpected payload: %+v", p)
	}
}

func TestUnwrapPayloadRejectsGarbage(t *testing.T) {
	if _, err := UnwrapPayload[testPayload](json.RawMessage(`{broken`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
