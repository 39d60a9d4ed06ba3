package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ballroyale/server/internal/events"
	"github.com/ballroyale/server/internal/game"
	"github.com/ballroyale/server/internal/store"
	"github.com/ballroyale/server/internal/ws"
)

var (
	ErrNotHost          = errors.New("only the host can do that")
	ErrNoActiveGame     = errors.New("no active game")
	ErrGameInProgress   = errors.New("game already running")
	ErrModeUnavailable  = errors.New("game mode not available")
	ErrNotEnoughPlayers = errors.New("not enough players")
)

const saveTimeout = 5 * time.Second

// Lobby is the room directory the controller talks back to: it resolves the
// current host, supplies rosters, fans messages out to a room's connections
// and records wins.
type Lobby interface {
	HostID(code string) string
	Roster(code string) []game.RosterEntry
	Broadcast(code string, msg ws.Message)
	GameStarted(code string)
	GameEnded(code string)
	AddWin(code, playerID string)
}

// Controller owns every live session, keyed by room code. All lifecycle
// transitions go through it; each session's simulation runs on its own loop
// goroutine launched here.
type Controller struct {
	clock clockwork.Clock
	lobby Lobby
	feed  events.Feed
	store store.MatchStore // nil disables match persistence

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewController creates a session controller. feed must be non-nil; pass
// events.Nop when no feed is configured. matches may be nil.
func NewController(clock clockwork.Clock, lobby Lobby, feed events.Feed, matches store.MatchStore) *Controller {
	return &Controller{
		clock:    clock,
		lobby:    lobby,
		feed:     feed,
		store:    matches,
		sessions: make(map[string]*Session),
	}
}

// Start launches a new game for a room: spawns the roster, registers the
// session and enters the countdown. Host only.
func (c *Controller) Start(code, requesterID string, mode game.Mode) error {
	if mode == game.ModeShrinking {
		return ErrModeUnavailable
	}
	if requesterID != c.lobby.HostID(code) {
		return ErrNotHost
	}
	roster := c.lobby.Roster(code)
	if len(roster) < game.MinPlayers {
		return ErrNotEnoughPlayers
	}

	c.mu.Lock()
	if _, exists := c.sessions[code]; exists {
		c.mu.Unlock()
		return ErrGameInProgress
	}
	s := newSession(code, game.NewState(roster, mode))
	c.sessions[code] = s
	c.mu.Unlock()

	c.lobby.GameStarted(code)
	c.feed.GameStarted(code, mode.String(), len(roster))
	slog.Info("game started", "room", code, "mode", mode, "players", len(roster))

	go c.run(s, 1, s.stopCh)
	return nil
}

// Restart replaces the session's game with a fresh one for the room's current
// roster, at any point in the lifecycle. Host only. The old loop is cut off by
// the generation bump and its closed stop channel.
func (c *Controller) Restart(code, requesterID string) error {
	s := c.session(code)
	if s == nil {
		return ErrNoActiveGame
	}
	if requesterID != c.lobby.HostID(code) {
		return ErrNotHost
	}
	roster := c.lobby.Roster(code)
	if len(roster) < game.MinPlayers {
		return ErrNotEnoughPlayers
	}

	s.mu.Lock()
	mode := s.state.Mode
	s.stopLocked()
	s.cancelTeardownLocked()
	s.state = game.NewState(roster, mode)
	s.generation++
	s.stopCh = make(chan struct{})
	gen := s.generation
	stopCh := s.stopCh
	s.mu.Unlock()

	c.lobby.GameStarted(code)
	c.feed.GameStarted(code, mode.String(), len(roster))
	slog.Info("game restarted", "room", code, "generation", gen, "players", len(roster))

	go c.run(s, gen, stopCh)
	return nil
}

// ManualEnd cuts a running game short. The elimination leader wins. Host
// only.
func (c *Controller) ManualEnd(code, requesterID string) error {
	s := c.session(code)
	if s == nil {
		return ErrNoActiveGame
	}
	if requesterID != c.lobby.HostID(code) {
		return ErrNotHost
	}

	s.mu.RLock()
	st := s.state
	gen := s.generation
	playing := st.Status == game.StatusPlaying
	winnerID := game.EliminationLeader(st)
	s.mu.RUnlock()

	if !playing {
		return ErrNoActiveGame
	}
	c.endGame(s, st, gen, winnerID)
	return nil
}

// ApplyInput overwrites a player's input slot. Unknown rooms and players are
// silent no-ops; stale packets from dead connections carry no authority worth
// reporting. Last write wins, the loop reads the slot once per tick.
func (c *Controller) ApplyInput(code, playerID string, in game.Input) {
	s := c.session(code)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.state.Player(playerID); p != nil {
		p.Input = in
	}
}

// Destroy stops a session's loops and drops it from the registry. Called when
// the room empties out.
func (c *Controller) Destroy(code string) {
	c.mu.Lock()
	s := c.sessions[code]
	delete(c.sessions, code)
	c.mu.Unlock()
	if s == nil {
		return
	}

	s.mu.Lock()
	s.generation++
	s.stopLocked()
	s.cancelTeardownLocked()
	s.mu.Unlock()
	slog.Info("session destroyed", "room", code)
}

// Snapshot returns the current broadcast view of a room's game.
func (c *Controller) Snapshot(code string) (game.Snapshot, bool) {
	s := c.session(code)
	if s == nil {
		return game.Snapshot{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return game.BuildSnapshot(s.state), true
}

// SessionCount returns the number of live sessions.
func (c *Controller) SessionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

func (c *Controller) session(code string) *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessions[code]
}

// scheduleTeardown arms the timer that reaps an ended session. A restart
// cancels it; the reap itself re-checks that the session and generation are
// still the ones it was armed for.
func (c *Controller) scheduleTeardown(s *Session, gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.teardown != nil {
		s.teardown.Stop()
	}
	s.teardown = c.clock.AfterFunc(game.TeardownDelay, func() {
		c.reap(s, gen)
	})
}

func (c *Controller) reap(s *Session, gen int) {
	if !s.isCurrent(gen) {
		return
	}
	c.mu.Lock()
	if c.sessions[s.Code] != s {
		c.mu.Unlock()
		return
	}
	delete(c.sessions, s.Code)
	c.mu.Unlock()
	slog.Info("session torn down", "room", s.Code)
}

func (c *Controller) saveMatch(result store.MatchResult) {
	result.ID = uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := c.store.SaveMatch(ctx, result); err != nil {
		slog.Error("failed to save match result", "room", result.RoomCode, "error", err)
	}
}
