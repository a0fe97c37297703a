package api

import (
	"net/http"

	"github.com/sitewise/sitewise-server/internal/api/respond"
	"github.com/sitewise/sitewise-server/internal/report"
	"github.com/sitewise/sitewise-server/internal/services"
)

type ReportHandler struct {
	svc *services.ReportService
}

func NewReportHandler(svc *services.ReportService) *ReportHandler { return &ReportHandler{svc: svc} }

func (h *ReportHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.Overview(r.Context())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, ov)
}

func (h *ReportHandler) VisitSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.VisitSummary(r.Context(), visitFilterFromQuery(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, sum)
}

func (h *ReportHandler) PersonProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pp, err := h.svc.PersonProjects(r.Context(), q.Get("person"), visitFilterFromQuery(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, pp)
}

func (h *ReportHandler) DeliveryCoverage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cov, err := h.svc.DeliveryCoverage(r.Context(), q.Get("from"), q.Get("to"), q.Get("project"))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, cov)
}

// export writes sections in the format named by the ?format query parameter,
// csv by default.
func (h *ReportHandler) export(w http.ResponseWriter, r *http.Request, name string, sections []report.Section) {
	format := r.URL.Query().Get("format")
	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.xlsx"`)
	case "csv", "":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
	default:
		respond.WriteBadRequest(w, "unsupported format "+format)
		return
	}
	if err := h.svc.Export(w, format, sections); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
}

func (h *ReportHandler) ExportVisitSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.VisitSummary(r.Context(), visitFilterFromQuery(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	h.export(w, r, "visit-summary", sum.Sections())
}

func (h *ReportHandler) ExportPersonProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pp, err := h.svc.PersonProjects(r.Context(), q.Get("person"), visitFilterFromQuery(r))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	h.export(w, r, "person-projects", pp.Sections())
}

func (h *ReportHandler) ExportDeliveryCoverage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cov, err := h.svc.DeliveryCoverage(r.Context(), q.Get("from"), q.Get("to"), q.Get("project"))
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	h.export(w, r, "delivery-coverage", cov.Sections())
}
