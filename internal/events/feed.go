// Package events publishes game lifecycle events for consumers outside the
// server (match history, spectator overlays). Publication is fire-and-forget:
// a slow or absent consumer never slows a tick.
package events

import "github.com/ballroyale/server/internal/game"

// Feed receives game lifecycle events.
type Feed interface {
	GameStarted(roomCode, mode string, players int)
	PlayerEliminated(roomCode, playerID, attackerID string, order int)
	GameEnded(roomCode, winnerID string, placements []game.Placement)
	Close()
}

// Nop is the Feed used when no event backend is configured.
type Nop struct{}

func (Nop) GameStarted(string, string, int)              {}
func (Nop) PlayerEliminated(string, string, string, int) {}
func (Nop) GameEnded(string, string, []game.Placement)   {}
func (Nop) Close()                                       {}
