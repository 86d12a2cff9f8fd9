// Package geo is the device geolocation capability: one-off fixes and a
// cancellable stream of position updates.
package geo

import (
	"context"
	"errors"
	"time"

	"github.com/garnizeh/rozgar/pkg/models"
)

var (
	// ErrUnsupported means the device has no geolocation at all.
	ErrUnsupported = errors.New("geolocation is not supported")
	// ErrPermissionDenied means the user refused location access.
	ErrPermissionDenied = errors.New("location permission denied")
	ErrUnavailable      = errors.New("location unavailable")
)

type Position struct {
	Coords   models.Coords `json:"coords"`
	Accuracy float64       `json:"accuracy,omitempty"`
	At       time.Time     `json:"at"`
}

type Subscription interface {
	// Cancel stops delivery. Calling it more than once is harmless.
	Cancel()
}

type Locator interface {
	CurrentPosition(ctx context.Context) (Position, error)
	// Watch delivers every new position to onUpdate and failures to onError
	// until the subscription is cancelled.
	Watch(onUpdate func(Position), onError func(error)) (Subscription, error)
}

// Unsupported is the Locator of a device without geolocation.
type Unsupported struct{}

func (Unsupported) CurrentPosition(context.Context) (Position, error) {
	return Position{}, ErrUnsupported
}

func (Unsupported) Watch(func(Position), func(error)) (Subscription, error) {
	return nil, ErrUnsupported
}
