package session

import (
	"log/slog"
	"time"

	"github.com/ballroyale/server/internal/game"
	"github.com/ballroyale/server/internal/store"
	"github.com/ballroyale/server/internal/ws"
)

type stateUpdateMessage struct {
	GameData game.Snapshot `json:"gameData"`
}

type playerEliminatedMessage struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	RemainingCount int    `json:"remainingCount"`
}

type gameEndMessage struct {
	WinnerID    string           `json:"winnerId"`
	WinnerName  string           `json:"winnerName"`
	FinalScores []game.Placement `json:"finalScores"`
	GameData    game.Snapshot    `json:"gameData"`
}

// elimNotice carries one elimination out of the tick's critical section, for
// broadcast and feed publication after the lock is released.
type elimNotice struct {
	id         string
	name       string
	attackerID string
	order      int
	remaining  int
}

// run is the session loop for one generation: a 1 Hz countdown phase, then
// simulation ticks and state broadcasts interleaved on their own tickers.
// Every wakeup re-checks the generation so a loop orphaned by a restart exits
// without touching the new game.
func (c *Controller) run(s *Session, gen int, stopCh chan struct{}) {
	c.broadcastState(s)

	if !c.runCountdown(s, gen, stopCh) {
		return
	}

	tick := c.clock.NewTicker(game.TickInterval)
	defer tick.Stop()
	broadcast := c.clock.NewTicker(game.BroadcastInterval)
	defer broadcast.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-tick.Chan():
			if !s.isCurrent(gen) {
				return
			}
			c.tick(s, gen)
		case <-broadcast.Chan():
			if !s.isCurrent(gen) {
				return
			}
			c.broadcastState(s)
		}
	}
}

// runCountdown drives the 1 Hz countdown and reports whether play began.
func (c *Controller) runCountdown(s *Session, gen int, stopCh chan struct{}) bool {
	countdown := c.clock.NewTicker(time.Second)
	defer countdown.Stop()

	for {
		select {
		case <-stopCh:
			return false
		case <-countdown.Chan():
			if !s.isCurrent(gen) {
				return false
			}
			if c.countdownTick(s) {
				return true
			}
		}
	}
}

// countdownTick steps the countdown by one second and reports whether play
// began.
func (c *Controller) countdownTick(s *Session) bool {
	s.mu.Lock()
	st := s.state
	if st.Status != game.StatusCountdown {
		s.mu.Unlock()
		return st.Status == game.StatusPlaying
	}
	st.CountdownValue--
	playing := st.CountdownValue <= 0
	if playing {
		st.BeginPlay(c.clock.Now())
	}
	s.mu.Unlock()

	c.broadcastState(s)
	if playing {
		slog.Info("round live", "room", s.Code)
	}
	return playing
}

// tick advances the simulation by one frame: physics, collisions,
// eliminations, then the victory check. Elapsed time comes from the clock and
// is capped so a stalled scheduler cannot teleport anyone.
func (c *Controller) tick(s *Session, gen int) {
	now := c.clock.Now()

	s.mu.Lock()
	st := s.state
	if st.Status != game.StatusPlaying {
		s.mu.Unlock()
		return
	}
	dt := now.Sub(st.LastTick).Seconds()
	if dt > game.MaxTickDelta {
		dt = game.MaxTickDelta
	}
	st.LastTick = now

	game.Step(st, dt)
	game.ResolveCollisions(st, now)

	var notices []elimNotice
	for _, ev := range game.CheckEliminations(st, now) {
		name := ""
		if p := st.Player(ev.PlayerID); p != nil {
			name = p.Name
		}
		// Order counts every elimination so far, so this is the count left
		// after this event even when several players drop on one tick.
		notices = append(notices, elimNotice{
			id:         ev.PlayerID,
			name:       name,
			attackerID: ev.AttackerID,
			order:      ev.Order,
			remaining:  len(st.Players) - ev.Order,
		})
	}

	var winnerID string
	var over bool
	if st.Mode == game.ModeTimed {
		winnerID, over = game.CheckTimedVictory(st, now)
	} else {
		winnerID, over = game.CheckVictory(st)
	}
	s.mu.Unlock()

	for _, n := range notices {
		msg, err := ws.NewMessage(ws.TypePlayerEliminated, playerEliminatedMessage{
			ID:             n.id,
			Name:           n.name,
			RemainingCount: n.remaining,
		})
		if err == nil {
			c.lobby.Broadcast(s.Code, msg)
		}
		c.feed.PlayerEliminated(s.Code, n.id, n.attackerID, n.order)
		slog.Info("player eliminated", "room", s.Code, "player", n.id, "by", n.attackerID, "remaining", n.remaining)
	}

	if over {
		c.endGame(s, st, gen, winnerID)
	}
}

// broadcastState sends the sanitized snapshot to the whole room. The copy is
// taken under the read lock; encoding and fan-out happen outside it.
func (c *Controller) broadcastState(s *Session) {
	s.mu.RLock()
	snap := game.BuildSnapshot(s.state)
	s.mu.RUnlock()

	msg, err := ws.NewMessage(ws.TypeStateUpdate, stateUpdateMessage{GameData: snap})
	if err != nil {
		slog.Error("failed to encode state update", "room", s.Code, "error", err)
		return
	}
	c.lobby.Broadcast(s.Code, msg)
}

// endGame finishes the session's current game: records the winner, notifies
// the room, hands the result to the feed and the match store, and arms the
// teardown timer. Safe against double invocation and against racing a
// restart.
func (c *Controller) endGame(s *Session, st *game.State, gen int, winnerID string) {
	finished := c.clock.Now()

	s.mu.Lock()
	if s.state != st || st.Status == game.StatusEnded {
		s.mu.Unlock()
		return
	}
	st.Status = game.StatusEnded
	st.WinnerID = winnerID
	s.stopLocked()

	winnerName := ""
	if w := st.Player(winnerID); w != nil {
		winnerName = w.Name
	}
	placements := game.BuildPlacements(st, winnerID)
	snap := game.BuildSnapshot(st)
	result := store.MatchResult{
		RoomCode:    s.Code,
		Mode:        st.Mode.String(),
		WinnerID:    winnerID,
		WinnerName:  winnerName,
		PlayerCount: len(st.Players),
		Duration:    finished.Sub(st.StartedAt),
		Placements:  placements,
		FinishedAt:  finished,
	}
	s.mu.Unlock()

	if winnerID != "" {
		c.lobby.AddWin(s.Code, winnerID)
	}
	c.lobby.GameEnded(s.Code)

	msg, err := ws.NewMessage(ws.TypeGameEnd, gameEndMessage{
		WinnerID:    winnerID,
		WinnerName:  winnerName,
		FinalScores: placements,
		GameData:    snap,
	})
	if err == nil {
		c.lobby.Broadcast(s.Code, msg)
	}
	slog.Info("game ended", "room", s.Code, "winner", winnerID, "players", result.PlayerCount)

	c.feed.GameEnded(s.Code, winnerID, placements)
	if c.store != nil {
		go c.saveMatch(result)
	}
	c.scheduleTeardown(s, gen)
}
