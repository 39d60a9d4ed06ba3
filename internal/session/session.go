package session

import (
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/ballroyale/server/internal/game"
)

// Session is the container for one room's game. The state slot is replaced
// wholesale on restart; everything that touches it re-fetches through the
// container under the lock, so a swapped-out payload can never be mutated by
// a stale reference.
type Session struct {
	Code string

	mu         sync.RWMutex
	state      *game.State
	generation int
	stopCh     chan struct{}
	teardown   clockwork.Timer
}

func newSession(code string, state *game.State) *Session {
	return &Session{
		Code:       code,
		state:      state,
		generation: 1,
		stopCh:     make(chan struct{}),
	}
}

// isCurrent reports whether the given generation is still the live one.
// Loop goroutines call this on every wakeup and exit silently once the
// session has moved on.
func (s *Session) isCurrent(gen int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation == gen
}

// stopLocked closes the current loop's stop channel. Safe to call twice.
// Caller must hold s.mu.
func (s *Session) stopLocked() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}

// cancelTeardownLocked stops a pending teardown timer if one is armed.
// Caller must hold s.mu.
func (s *Session) cancelTeardownLocked() {
	if s.teardown != nil {
		s.teardown.Stop()
		s.teardown = nil
	}
}
