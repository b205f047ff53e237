package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/fulfillment"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/metrics"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/orders"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/redisx"
)

type OrdersHandler struct {
	Repo        *orders.Repo
	Fulfillment *fulfillment.Service
	Redis       *redis.Client
	Metrics     *metrics.Metrics
	Log         *zap.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{orderNumber}", h.getOrder)
	r.Get("/orders/{orderNumber}/status", h.getStatus)
	r.Post("/orders/{orderNumber}/status", h.transition)
	r.Post("/orders/{orderNumber}/cancel", h.cancel)
	r.Post("/orders/{orderNumber}/return", h.returnOrder)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ord, err := h.Repo.Get(ctx, orderNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ord)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "missing user_id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Repo.ListByUser(ctx, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// getStatus serves from the Redis cache first and falls back to the DB,
// re-warming the cache on a miss.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderNumber)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	ord, err := h.Repo.Get(ctx, orderNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	body, _ := json.Marshal(map[string]any{"status": ord.Status})
	_ = h.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
	writeJSON(w, http.StatusOK, json.RawMessage(body))
}

type transitionReq struct {
	Actor             orders.Actor  `json:"actor"`
	ActorID           string        `json:"actor_id,omitempty"`
	Target            orders.Status `json:"target"`
	DeliveryPartnerID string        `json:"delivery_partner_id,omitempty"`
	TrackingNumber    string        `json:"tracking_number,omitempty"`
}

func (h *OrdersHandler) transition(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	var req transitionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_JSON", Error: "invalid json"})
		return
	}
	if req.Actor == "" || !orders.ValidStatus(req.Target) {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "missing actor or unknown target status"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ord, err := h.Fulfillment.Transition(ctx, fulfillment.Request{
		OrderNumber:       orderNumber,
		Actor:             req.Actor,
		ActorID:           req.ActorID,
		Target:            req.Target,
		DeliveryPartnerID: req.DeliveryPartnerID,
		TrackingNumber:    req.TrackingNumber,
	})
	if err != nil {
		h.Metrics.Transitions.WithLabelValues(string(req.Target), "rejected").Inc()
		writeError(w, err)
		return
	}
	h.Metrics.Transitions.WithLabelValues(string(req.Target), "applied").Inc()
	writeJSON(w, http.StatusOK, ord)
}

type cancelReq struct {
	Actor   orders.Actor `json:"actor"`
	ActorID string       `json:"actor_id,omitempty"`
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	var req cancelReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_JSON", Error: "invalid json"})
		return
	}
	if req.Actor == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "missing actor"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ord, err := h.Fulfillment.Cancel(ctx, orderNumber, req.Actor, req.ActorID)
	if err != nil {
		h.Metrics.Transitions.WithLabelValues(string(orders.StatusCancelled), "rejected").Inc()
		writeError(w, err)
		return
	}
	h.Metrics.Transitions.WithLabelValues(string(orders.StatusCancelled), "applied").Inc()
	writeJSON(w, http.StatusOK, ord)
}

type returnReq struct {
	UserID string `json:"user_id"`
}

func (h *OrdersHandler) returnOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	var req returnReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_JSON", Error: "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ord, err := h.Fulfillment.Return(ctx, orderNumber, req.UserID)
	if err != nil {
		h.Metrics.Transitions.WithLabelValues(string(orders.StatusReturned), "rejected").Inc()
		writeError(w, err)
		return
	}
	h.Metrics.Transitions.WithLabelValues(string(orders.StatusReturned), "applied").Inc()
	writeJSON(w, http.StatusOK, ord)
}
