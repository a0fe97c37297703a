package api

import (
	"encoding/json"
	"net/http"

	"github.com/sitewise/sitewise-server/internal/api/respond"
	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/services"
)

type ReceiptHandler struct {
	svc *services.ReceiptService
}

func NewReceiptHandler(svc *services.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{svc: svc}
}

func receiptFilterFromQuery(r *http.Request) model.ListReceiptsRequest {
	q := r.URL.Query()
	return model.ListReceiptsRequest{
		From:    q.Get("from"),
		To:      q.Get("to"),
		Project: q.Get("project"),
	}
}

// ImportCSV handles POST /api/receipts/import with a CSV request body.
func (h *ReceiptHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.svc.ImportCSV(r.Context(), r.Body)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{"imported": len(receipts)})
}

// CreateReceipt handles POST /api/receipts for manual entries.
func (h *ReceiptHandler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	var in model.Receipt
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	rec, err := h.svc.CreateManual(r.Context(), &in)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, rec)
}

func (h *ReceiptHandler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.svc.ListReceipts(r.Context(), receiptFilterFromQuery(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"receipts": receipts, "count": len(receipts)})
}

func (h *ReceiptHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="receipts.csv"`)
	if err := h.svc.ExportCSV(r.Context(), w, receiptFilterFromQuery(r)); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
}

func (h *ReceiptHandler) ClearReceipts(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearReceipts(r.Context()); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
