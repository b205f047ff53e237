package redisx

import "time"

const (
	// Checkout idempotency: idem:checkout:{user_id}:{key} -> order_number
	KeyIdemCheckout = "idem:checkout:%s:%s"

	// Cache: order_status:{order_number} -> {"status": "...", "updated_at": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup for event consumers: dedup:{consumer}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
