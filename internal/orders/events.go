package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderCancelled     = "OrderCancelled"
)

// Envelope wraps every domain event published after a successful
// transaction commit. Delivery and retry belong to the notification
// side; the engine never blocks on it.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order number
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderNumber   string        `json:"order_number"`
	UserID        string        `json:"user_id"`
	SellerID      string        `json:"seller_id"`
	Items         []Item        `json:"items"`
	FinalAmount   int64         `json:"final_amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

type OrderStatusChangedPayload struct {
	OrderNumber string `json:"order_number"`
	From        Status `json:"from"`
	To          Status `json:"to"`
	Actor       Actor  `json:"actor"`
}

type OrderCancelledPayload struct {
	OrderNumber string `json:"order_number"`
	By          Actor  `json:"cancelled_by"`
	Refunded    bool   `json:"refunded"`
}
