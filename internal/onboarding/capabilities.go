package onboarding

import (
	"context"
	"errors"

	"github.com/garnizeh/rozgar/internal/geo"
	"github.com/garnizeh/rozgar/pkg/models"
)

// ErrSpeechUnsupported means the name has to be typed.
var ErrSpeechUnsupported = errors.New("speech recognition is not supported")

// NearbyLabel is the address text filled in from a location fix.
const NearbyLabel = "मौंड़ा, अमरा एडेरा (नजदीकी लोकेशन)"

// Transcriber turns dictated speech into a name.
type Transcriber interface {
	Transcribe(ctx context.Context) (string, error)
}

// NoSpeech is the Transcriber of a device without speech recognition.
type NoSpeech struct{}

func (NoSpeech) Transcribe(context.Context) (string, error) {
	return "", ErrSpeechUnsupported
}

// Suggestion is an address pre-filled from the device location.
type Suggestion struct {
	Address string        `json:"address"`
	Coords  models.Coords `json:"coords"`
}

// LocateAddress asks for one fix. Any failure leaves the address manual.
func LocateAddress(ctx context.Context, loc geo.Locator) (Suggestion, error) {
	if loc == nil {
		return Suggestion{}, geo.ErrUnsupported
	}
	p, err := loc.CurrentPosition(ctx)
	if err != nil {
		return Suggestion{}, err
	}
	return Suggestion{Address: NearbyLabel, Coords: p.Coords}, nil
}
