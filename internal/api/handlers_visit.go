package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sitewise/sitewise-server/internal/api/respond"
	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/report"
	"github.com/sitewise/sitewise-server/internal/services"
)

type VisitHandler struct {
	svc *services.VisitService
}

func NewVisitHandler(svc *services.VisitService) *VisitHandler { return &VisitHandler{svc: svc} }

func visitFilterFromQuery(r *http.Request) report.VisitFilter {
	q := r.URL.Query()
	return report.VisitFilter{
		From:    q.Get("from"),
		To:      q.Get("to"),
		Project: q.Get("project"),
		Person:  q.Get("person"),
		Team:    q.Get("team"),
	}
}

// ImportCSV handles POST /api/visits/import with a CSV request body.
// A single bad row rejects the whole upload.
func (h *VisitHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	visits, err := h.svc.ImportCSV(r.Context(), r.Body)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{"imported": len(visits)})
}

func (h *VisitHandler) ListVisits(w http.ResponseWriter, r *http.Request) {
	visits, err := h.svc.ListVisits(r.Context(), visitFilterFromQuery(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"visits": visits, "count": len(visits)})
}

func (h *VisitHandler) GetVisit(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.GetVisit(r.Context(), mux.Vars(r)["visitId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, v)
}

// CreateVisit handles POST /api/visits for manual entries.
func (h *VisitHandler) CreateVisit(w http.ResponseWriter, r *http.Request) {
	var in model.Visit
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	v, err := h.svc.CreateManual(r.Context(), &in)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, v)
}

// ExportCSV handles GET /api/visits/export, honoring the same filters as
// the listing endpoint.
func (h *VisitHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="visits.csv"`)
	if err := h.svc.ExportCSV(r.Context(), w, visitFilterFromQuery(r)); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
}

func (h *VisitHandler) ClearVisits(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearVisits(r.Context()); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
