package api

import (
	"net/http"

	"github.com/garnizeh/rozgar/internal/coordinator"
	"github.com/garnizeh/rozgar/pkg/models"
)

type phoneRequest struct {
	Phone string `json:"phone"`
}

type roleRequest struct {
	Role models.RoleType `json:"role"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type photoRequest struct {
	Photo string `json:"photo"`
}

type addressRequest struct {
	Address string         `json:"address"`
	Coords  *models.Coords `json:"coords,omitempty"`
}

func (h *AppHandler) SubmitPhone(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	h.step(w, r, func() (coordinator.View, error) { return h.app.SubmitPhone(r.Context(), req.Phone) })
}

func (h *AppHandler) SelectRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	h.step(w, r, func() (coordinator.View, error) { return h.app.SelectRole(r.Context(), req.Role) })
}

func (h *AppHandler) SubmitName(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	h.step(w, r, func() (coordinator.View, error) { return h.app.SubmitName(r.Context(), req.Name) })
}

func (h *AppHandler) SubmitPhoto(w http.ResponseWriter, r *http.Request) {
	var req photoRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	h.step(w, r, func() (coordinator.View, error) { return h.app.SubmitPhoto(r.Context(), req.Photo) })
}

func (h *AppHandler) SubmitAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	h.step(w, r, func() (coordinator.View, error) {
		return h.app.SubmitAddress(r.Context(), req.Address, req.Coords)
	})
}

func (h *AppHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, func() (coordinator.View, error) { return h.app.Back(r.Context()) })
}

// DictateName fills the name field from speech; the step does not advance.
func (h *AppHandler) DictateName(w http.ResponseWriter, r *http.Request) {
	name, err := h.app.DictateName(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nameRequest{Name: name})
}

// LocateAddress suggests an address from the current device position.
func (h *AppHandler) LocateAddress(w http.ResponseWriter, r *http.Request) {
	s, err := h.app.LocateAddress(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// step applies an onboarding input. Rejected input still reports the screen.
func (h *AppHandler) step(w http.ResponseWriter, r *http.Request, fn func() (coordinator.View, error)) {
	v, err := fn()
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondView(w, v)
}
