package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sitewise/sitewise-server/internal/api/respond"
	"github.com/sitewise/sitewise-server/internal/api/validate"
	"github.com/sitewise/sitewise-server/internal/services"
)

type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email       string `json:"email" validate:"required,email"`
		DisplayName string `json:"displayName"`
		Role        string `json:"role" validate:"required"`
		Password    string `json:"password" validate:"required,min=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	u, err := h.svc.CreateUser(r.Context(), in.Email, in.DisplayName, in.Role, in.Password)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, u)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	u, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users, "count": len(users)})
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var in struct {
		DisplayName string `json:"displayName"`
		Role        string `json:"role"`
		Status      string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	u, err := h.svc.UpdateUser(r.Context(), userID, in.DisplayName, in.Role, in.Status)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

// DeleteUser handles DELETE /api/users/{userId}. Accounts are deactivated,
// not removed.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.DeactivateUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}

func (h *UserHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	var in struct {
		Password string `json:"password" validate:"required,min=6"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.svc.SetPassword(r.Context(), userID, in.Password); err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
