package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/payments"
)

type PaymentsHandler struct {
	Ledger *payments.Ledger
	Log    *zap.Logger
}

func (h *PaymentsHandler) Register(r *chi.Mux) {
	r.Get("/payments/{orderNumber}", h.get)
	r.Post("/payments/{orderNumber}/complete", h.complete)
}

func (h *PaymentsHandler) get(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rec, err := h.Ledger.Get(ctx, orderNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type completeReq struct {
	TransactionID string `json:"transaction_id"`
}

// complete is the callback surface for the external payment gateway.
func (h *PaymentsHandler) complete(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	var req completeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_JSON", Error: "invalid json"})
		return
	}
	if req.TransactionID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "missing transaction_id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Ledger.MarkCompleted(ctx, orderNumber, req.TransactionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
