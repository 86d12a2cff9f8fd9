package api

import (
	"net/http"

	"github.com/garnizeh/rozgar/internal/jobboard"
	"github.com/garnizeh/rozgar/pkg/models"
)

type jobsResponse struct {
	Jobs []models.Job `json:"jobs"`
}

func (h *AppHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.app.ListAvailable(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobsResponse{Jobs: jobs})
}

func (h *AppHandler) ListAccepted(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.app.ListAccepted(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobsResponse{Jobs: jobs})
}

func (h *AppHandler) AcceptJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}
	job, err := h.app.AcceptJob(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *AppHandler) RejectJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}
	if err := h.app.RejectJob(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AppHandler) PostJob(w http.ResponseWriter, r *http.Request) {
	var req jobboard.Posting
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	job, err := h.app.PostJob(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}
