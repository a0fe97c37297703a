package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sitewise/sitewise-server/internal/api/respond"
	"github.com/sitewise/sitewise-server/internal/api/validate"
	"github.com/sitewise/sitewise-server/internal/auth"
	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/services"
)

type IssueHandler struct {
	svc *services.IssueService
}

func NewIssueHandler(svc *services.IssueService) *IssueHandler { return &IssueHandler{svc: svc} }

func (h *IssueHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Project     string        `json:"project" validate:"required"`
		Description string        `json:"description" validate:"required"`
		Photos      []model.Photo `json:"photos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	is, err := h.svc.CreateIssue(r.Context(), &model.Issue{
		Project:     in.Project,
		Description: in.Description,
		Photos:      in.Photos,
	})
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, is)
}

func (h *IssueHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.svc.ListIssues(r.Context())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"issues": issues, "count": len(issues)})
}

func (h *IssueHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	is, err := h.svc.GetIssue(r.Context(), mux.Vars(r)["issueId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, is)
}

func (h *IssueHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	author := ""
	if actor := auth.ActorFrom(r.Context()); actor != nil {
		author = actor.Name
		if author == "" {
			author = actor.Email
		}
	}
	is, err := h.svc.AddComment(r.Context(), mux.Vars(r)["issueId"], author, in.Text)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, is)
}

// Analyze handles POST /api/issues/{issueId}/analyze. Failures leave the
// stored analysis untouched.
func (h *IssueHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	is, err := h.svc.Analyze(r.Context(), mux.Vars(r)["issueId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, is)
}

func (h *IssueHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	is, err := h.svc.SetStatus(r.Context(), mux.Vars(r)["issueId"], in.Status)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, is)
}

func (h *IssueHandler) DeleteIssue(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteIssue(r.Context(), mux.Vars(r)["issueId"]); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
