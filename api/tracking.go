package api

import "net/http"

func (h *AppHandler) TrackingState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.TrackingState(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *AppHandler) OpenTracking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}
	snap, err := h.app.OpenTracking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ShareLocation starts location sharing. A refused location still returns the
// snapshot so the notice can be shown.
func (h *AppHandler) ShareLocation(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.ShareLocation(r.Context())
	if err != nil {
		if snap.JobID == 0 {
			writeError(w, err)
			return
		}
		writeJSON(w, statusFor(err), snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *AppHandler) Reached(w http.ResponseWriter, r *http.Request) {
	a, err := h.app.Reached(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AppHandler) LeaveTracking(w http.ResponseWriter, r *http.Request) {
	v, err := h.app.LeaveTracking(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondView(w, v)
}
