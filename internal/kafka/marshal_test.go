package kafka

import (
	"encoding/json"
	"testing"
)

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		OrderNumber string `json:"order_number"`
		Qty         int64  `json:"qty"`
	}

	raw := json.RawMessage(`{"order_number":"PP-20260831-AABBCCDD","qty":3}`)
	p, err := UnwrapPayload[payload](raw)
	if err != nil {
		t.Fatalf("UnwrapPayload: %v", err)
	}
	if p.OrderNumber != "PP-20260831-AABBCCDD" || p.Qty != 3 {
		t.Fatalf("unexpected payload %+v", p)
	}

	if _, err := UnwrapPayload[payload](json.RawMessage(`{`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
