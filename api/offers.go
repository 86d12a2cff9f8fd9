package api

import "net/http"

func (h *AppHandler) CurrentOffer(w http.ResponseWriter, r *http.Request) {
	o, err := h.app.CurrentOffer(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *AppHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	job, err := h.app.AcceptOffer(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *AppHandler) DeclineOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.app.DeclineOffer(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
