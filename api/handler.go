package api

import (
	"net/http"
	"strconv"

	"log/slog"

	"github.com/gorilla/mux"

	"github.com/garnizeh/rozgar/internal/coordinator"
)

// AppHandler exposes the coordinator to the UI shell.
type AppHandler struct {
	app    *coordinator.Coordinator
	tokens *SessionTokens
}

func NewAppHandler(app *coordinator.Coordinator, tokens *SessionTokens) *AppHandler {
	return &AppHandler{app: app, tokens: tokens}
}

type viewResponse struct {
	coordinator.View
	Token string `json:"token,omitempty"`
}

// respondView writes v, attaching a session token once a profile is active.
func (h *AppHandler) respondView(w http.ResponseWriter, v coordinator.View) {
	resp := viewResponse{View: v}
	if v.Profile != nil && v.Profile.Phone != "" {
		token, err := h.tokens.Issue(v.Profile.Phone)
		if err != nil {
			logger.Error("issue session token", slog.Any("err", err))
			http.Error(w, "failed to create token", http.StatusInternalServerError)
			return
		}
		resp.Token = token
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetView returns the screen the UI should render.
func (h *AppHandler) GetView(w http.ResponseWriter, r *http.Request) {
	v, err := h.app.View(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondView(w, v)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
