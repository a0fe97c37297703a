package api

import (
	"encoding/json"
	"net/http"

	"github.com/sitewise/sitewise-server/internal/api/respond"
	"github.com/sitewise/sitewise-server/internal/api/validate"
	"github.com/sitewise/sitewise-server/internal/auth"
	"github.com/sitewise/sitewise-server/internal/services"
)

type AuthHandler struct {
	svc *services.UserService
}

func NewAuthHandler(svc *services.UserService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(in); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	u, token, err := h.svc.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token":        token,
		"user":         u,
		"capabilities": auth.Capabilities(u.Role),
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if actor == nil {
		respond.WriteUnauthorized(w, "missing bearer token")
		return
	}
	u, err := h.svc.GetUser(r.Context(), actor.UserID)
	if err != nil {
		respond.WriteServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user":         u,
		"capabilities": auth.Capabilities(u.Role),
	})
}
