package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientStock is an expected per-item outcome, not a fault.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidTransition: the requested (current, target) pair is not
	// in the fulfillment table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrActorNotAllowed: the edge exists but not for this actor.
	ErrActorNotAllowed = errors.New("actor not allowed for this transition")

	// ErrConflict: optimistic version check failed; the caller should
	// re-read current state before retrying.
	ErrConflict = errors.New("order modified concurrently")

	ErrCancellationWindowClosed = errors.New("cancellation window closed")
	ErrReturnWindowClosed       = errors.New("return window closed")

	// ErrPaymentAmountMismatch is an integrity violation: a payment
	// attempt whose amount differs from the order's final amount.
	ErrPaymentAmountMismatch = errors.New("payment amount does not match order total")

	// ErrAmountInvariant: finalAmount drifted from its inputs.
	ErrAmountInvariant = errors.New("order amount invariant violated")

	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrTrackingRequired    = errors.New("tracking number required to ship")
	ErrNotFound            = errors.New("order not found")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMultipleSellers     = errors.New("cart spans multiple sellers")
)

// Per-item checkout issue reasons.
const (
	IssueOutOfStock     = "OUT_OF_STOCK"
	IssuePriceChanged   = "PRICE_CHANGED"
	IssueProductMissing = "PRODUCT_MISSING"
)

type ItemIssue struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
	Requested int64  `json:"requested,omitempty"`
	Available int64  `json:"available,omitempty"`
	OldPrice  int64  `json:"old_price,omitempty"`
	NewPrice  int64  `json:"new_price,omitempty"`
}

// CheckoutRejectedError aggregates every blocking cart line so the
// caller can show exactly what needs fixing.
type CheckoutRejectedError struct {
	Issues []ItemIssue
}

func (e *CheckoutRejectedError) Error() string {
	return fmt.Sprintf("checkout rejected: %d item(s) blocked", len(e.Issues))
}
