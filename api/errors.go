package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/garnizeh/rozgar/internal/coordinator"
	"github.com/garnizeh/rozgar/internal/geo"
	"github.com/garnizeh/rozgar/internal/jobboard"
	"github.com/garnizeh/rozgar/internal/offer"
	"github.com/garnizeh/rozgar/internal/onboarding"
	"github.com/garnizeh/rozgar/internal/profile"
	"github.com/garnizeh/rozgar/internal/tracking"
)

type errorResponse struct {
	Error string `json:"error"`
	// Notice is the message shown to the user, when there is one.
	Notice string `json:"notice,omitempty"`
}

var notices = []struct {
	err    error
	notice string
}{
	{onboarding.ErrInvalidPhone, "कृपया एक वैध मोबाइल नंबर दर्ज करें"},
	{onboarding.ErrSpeechUnsupported, "आपका ब्राउज़र स्पीच रिकग्निशन को सपोर्ट नहीं करता है।"},
	{geo.ErrUnsupported, "लोकेशन सपोर्ट नहीं है"},
	{geo.ErrPermissionDenied, "लोकेशन एक्सेस करने में समस्या हुई। कृपया सेटिंग्स जांचें।"},
	{geo.ErrUnavailable, "लोकेशन नहीं मिल पाई, कृपया पता लिखें"},
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, onboarding.ErrWrongStep), errors.Is(err, onboarding.ErrCannotGoBack),
		errors.Is(err, tracking.ErrNotSharing), errors.Is(err, tracking.ErrArrived),
		errors.Is(err, tracking.ErrClosed), errors.Is(err, offer.ErrAlreadyRinging):
		return http.StatusConflict
	case onboarding.IsValidation(err),
		errors.Is(err, jobboard.ErrInvalidPosting), errors.Is(err, coordinator.ErrInvalidUpdate),
		errors.Is(err, profile.ErrInvalidProfile),
		errors.Is(err, onboarding.ErrSpeechUnsupported),
		errors.Is(err, geo.ErrUnsupported), errors.Is(err, geo.ErrUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, geo.ErrPermissionDenied), errors.Is(err, coordinator.ErrNotPoster):
		return http.StatusForbidden
	case errors.Is(err, jobboard.ErrNotFound), errors.Is(err, coordinator.ErrNoOffer),
		errors.Is(err, coordinator.ErrNoTracking):
		return http.StatusNotFound
	case errors.Is(err, coordinator.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, coordinator.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("err", err))
		resp.Error = "internal error"
	}
	for _, n := range notices {
		if errors.Is(err, n.err) {
			resp.Notice = n.notice
			break
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}
