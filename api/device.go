package api

import (
	"net/http"
	"time"

	"github.com/garnizeh/rozgar/internal/geo"
	"github.com/garnizeh/rozgar/pkg/models"
)

// DeviceHandler receives positions reported by the device shell.
type DeviceHandler struct {
	feed *geo.Feed
}

func NewDeviceHandler(feed *geo.Feed) *DeviceHandler {
	return &DeviceHandler{feed: feed}
}

type locationRequest struct {
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Accuracy float64  `json:"accuracy,omitempty"`
}

func (h *DeviceHandler) PushLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decode(r, &req); err != nil || req.Lat == nil || req.Lng == nil {
		http.Error(w, "lat and lng are required", http.StatusBadRequest)
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 {
		http.Error(w, "coordinates out of range", http.StatusBadRequest)
		return
	}
	h.feed.Push(geo.Position{
		Coords:   models.Coords{Lat: *req.Lat, Lng: *req.Lng},
		Accuracy: req.Accuracy,
		At:       time.Now(),
	})
	w.WriteHeader(http.StatusNoContent)
}

// DenyLocation records that the user refused location access.
func (h *DeviceHandler) DenyLocation(w http.ResponseWriter, r *http.Request) {
	h.feed.Deny()
	w.WriteHeader(http.StatusNoContent)
}
