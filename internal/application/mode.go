package application

import (
	"sync"

	"music-assistant/internal/domain"
)

// ModeState holds the interpretation mode for one session. One instance per
// session, created in title mode, mutated only by the two mode-change intents.
// The RWMutex covers sources that deliver utterances from their own goroutines
// (the HTTP source does); a session still processes one turn at a time.
type ModeState struct {
	mu   sync.RWMutex
	mode domain.Mode
}

func NewModeState() *ModeState {
	return &ModeState{mode: domain.DefaultMode}
}

func (s *ModeState) Get() domain.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Set replaces the current mode. Idempotent; any enumerated value is valid.
func (s *ModeState) Set(mode domain.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}
