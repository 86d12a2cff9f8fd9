// Package audio is the alarm sound capability. Playback is best effort:
// callers log failures and carry on.
package audio

import (
	"log/slog"
	"sync"
)

type Player interface {
	// Loop starts looped playback of the alarm.
	Loop() error
	Stop()
}

// Silent is a Player for devices without sound. It only records state.
type Silent struct {
	mu      sync.Mutex
	playing bool
	logger  *slog.Logger
}

func NewSilent(logger *slog.Logger) *Silent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Silent{logger: logger}
}

func (s *Silent) Loop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	s.logger.Debug("alarm playing")
	return nil
}

func (s *Silent) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		s.logger.Debug("alarm stopped")
	}
	s.playing = false
}

func (s *Silent) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}
