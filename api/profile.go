package api

import (
	"net/http"

	"github.com/garnizeh/rozgar/internal/coordinator"
)

func (h *AppHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Profile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AppHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req coordinator.ProfileUpdate
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	p, err := h.app.UpdateProfile(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Logout ends the session. Tokens issued before stop working immediately.
func (h *AppHandler) Logout(w http.ResponseWriter, r *http.Request) {
	v, err := h.app.Logout(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{View: v})
}
