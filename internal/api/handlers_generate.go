package api

import (
	"encoding/json"
	"net/http"

	"github.com/sitewise/sitewise-server/internal/api/respond"
	"github.com/sitewise/sitewise-server/internal/insights"
)

// GenerateHandler proxies generateContent calls so the upstream API key
// never reaches clients.
type GenerateHandler struct {
	client *insights.Client
}

func NewGenerateHandler(c *insights.Client) *GenerateHandler { return &GenerateHandler{client: c} }

// Generate handles POST /api/gemini/generateContent.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "analysis upstream is not configured")
		return
	}
	var in insights.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if len(in.Parts) == 0 {
		respond.WriteBadRequest(w, "at least one part is required")
		return
	}
	out, err := h.client.Generate(r.Context(), &in)
	if err != nil {
		respond.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
