package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/cart"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/catalog"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/payments"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/stock"
)

type errorBody struct {
	Code   string             `json:"code"`
	Error  string             `json:"error"`
	Issues []orders.ItemIssue `json:"issues,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors to stable machine codes. Clients see a
// reason, never internal ledger state.
func writeError(w http.ResponseWriter, err error) {
	var rejected *orders.CheckoutRejectedError
	if errors.As(err, &rejected) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Code:   "CHECKOUT_REJECTED",
			Error:  rejected.Error(),
			Issues: rejected.Issues,
		})
		return
	}

	var (
		status int
		code   string
	)
	switch {
	case errors.Is(err, orders.ErrInsufficientStock):
		status, code = http.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, orders.ErrInvalidTransition):
		status, code = http.StatusUnprocessableEntity, "INVALID_TRANSITION"
	case errors.Is(err, orders.ErrActorNotAllowed):
		status, code = http.StatusForbidden, "ACTOR_NOT_ALLOWED"
	case errors.Is(err, orders.ErrConflict):
		status, code = http.StatusConflict, "CONFLICT"
	case errors.Is(err, orders.ErrCancellationWindowClosed):
		status, code = http.StatusConflict, "CANCELLATION_WINDOW_CLOSED"
	case errors.Is(err, orders.ErrReturnWindowClosed):
		status, code = http.StatusConflict, "RETURN_WINDOW_CLOSED"
	case errors.Is(err, orders.ErrPaymentNotCompleted):
		status, code = http.StatusConflict, "PAYMENT_NOT_COMPLETED"
	case errors.Is(err, orders.ErrTrackingRequired):
		status, code = http.StatusBadRequest, "TRACKING_REQUIRED"
	case errors.Is(err, orders.ErrEmptyCart):
		status, code = http.StatusBadRequest, "EMPTY_CART"
	case errors.Is(err, orders.ErrMultipleSellers):
		status, code = http.StatusBadRequest, "MULTIPLE_SELLERS"
	case errors.Is(err, payments.ErrCODPendingDelivery):
		status, code = http.StatusConflict, "COD_PENDING_DELIVERY"
	case errors.Is(err, cart.ErrCouponInvalid):
		status, code = http.StatusBadRequest, "COUPON_INVALID"
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, cart.ErrAddressNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, stock.ErrProductUnknown),
		errors.Is(err, payments.ErrPaymentNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, orders.ErrPaymentAmountMismatch),
		errors.Is(err, orders.ErrAmountInvariant),
		errors.Is(err, stock.ErrLedgerInvariant):
		// integrity violations: logged upstream, opaque to the client
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Code: "INTEGRITY_VIOLATION", Error: "internal integrity violation",
		})
		return
	default:
		status, code = http.StatusInternalServerError, "INTERNAL"
	}
	writeJSON(w, status, errorBody{Code: code, Error: err.Error()})
}
