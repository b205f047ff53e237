package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/cart"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/metrics"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
)

type CartHandler struct {
	Svc     *cart.Service
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.list)
	r.Delete("/cart", h.clear)
	r.Post("/cart/items", h.addItem)
	r.Patch("/cart/items/{productID}", h.updateQty)
	r.Delete("/cart/items/{productID}", h.removeItem)
	r.Post("/checkout", h.checkout)
}

type cartItemReq struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Qty       int64  `json:"qty"`
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_JSON", Error: "invalid json"})
		return
	}
	if req.UserID == "" || req.ProductID == "" || req.Qty < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "missing fields"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ln, err := h.Svc.AddItem(ctx, req.UserID, req.ProductID, req.Qty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ln)
}

func (h *CartHandler) updateQty(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	var req cartItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_JSON", Error: "invalid json"})
		return
	}
	if req.UserID == "" || productID == "" || req.Qty < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "missing fields"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Svc.UpdateQuantity(ctx, req.UserID, productID, req.Qty); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	productID := chi.URLParam(r, "productID")
	if userID == "" || productID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "missing user_id or product id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Svc.RemoveItem(ctx, userID, productID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "missing user_id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Svc.Clear(ctx, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "missing user_id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lines, err := h.Svc.List(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

type checkoutReq struct {
	UserID         string               `json:"user_id"`
	AddressID      string               `json:"address_id"`
	PaymentMethod  orders.PaymentMethod `json:"payment_method"`
	CouponCode     string               `json:"coupon_code,omitempty"`
	IdempotencyKey string               `json:"idempotency_key,omitempty"`
}

func (h *CartHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_JSON", Error: "invalid json"})
		return
	}
	if req.UserID == "" || req.AddressID == "" || req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "missing fields"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	ord, err := h.Svc.Checkout(ctx, cart.CheckoutInput{
		UserID:         req.UserID,
		AddressID:      req.AddressID,
		PaymentMethod:  req.PaymentMethod,
		CouponCode:     req.CouponCode,
		IdempotencyKey: req.IdempotencyKey,
		TraceID:        r.Header.Get("X-Request-Id"),
	})
	if err != nil {
		h.observeCheckout(err)
		writeError(w, err)
		return
	}
	h.Metrics.Checkouts.WithLabelValues("accepted").Inc()
	writeJSON(w, http.StatusCreated, ord)
}

func (h *CartHandler) observeCheckout(err error) {
	var rejected *orders.CheckoutRejectedError
	if errors.As(err, &rejected) {
		h.Metrics.Checkouts.WithLabelValues("rejected").Inc()
		for _, issue := range rejected.Issues {
			if issue.Reason == orders.IssueOutOfStock {
				h.Metrics.StockRejections.Inc()
			}
		}
		return
	}
	h.Metrics.Checkouts.WithLabelValues("error").Inc()
}
