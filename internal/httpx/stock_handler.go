package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Nirmit210/pulsepixeltech-sub001/internal/catalog"
	"github.com/Nirmit210/pulsepixeltech-sub001/internal/stock"
)

type StockHandler struct {
	Ledger  *stock.Ledger
	Catalog *catalog.Catalog
	Log     *zap.Logger
}

func (h *StockHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/stock/{productID}", h.getStock)
	r.Post("/stock/{productID}/intake", h.intake)
}

func (h *StockHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *StockHandler) getStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.Ledger.Get(ctx, productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type intakeReq struct {
	Qty int64 `json:"qty"`
}

func (h *StockHandler) intake(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	var req intakeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_JSON", Error: "invalid json"})
		return
	}
	if req.Qty < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "BAD_REQUEST", Error: "qty must be >= 1"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.Ledger.AddStock(ctx, productID, req.Qty)
	if err != nil {
		writeError(w, err)
		return
	}
	h.Log.Info("stock intake",
		zap.String("product_id", productID),
		zap.Int64("qty", req.Qty))
	writeJSON(w, http.StatusOK, s)
}
