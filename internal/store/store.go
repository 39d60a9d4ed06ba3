package store

import (
	"context"
	"time"

	"github.com/ballroyale/server/internal/game"
)

// MatchResult is the record written once per finished game. The simulation
// itself never touches storage; this is an after-the-fact outcome log.
type MatchResult struct {
	ID          string           `json:"id"`
	RoomCode    string           `json:"roomCode"`
	Mode        string           `json:"mode"`
	WinnerID    string           `json:"winnerId"`
	WinnerName  string           `json:"winnerName"`
	PlayerCount int              `json:"playerCount"`
	Duration    time.Duration    `json:"duration"`
	Placements  []game.Placement `json:"placements"`
	FinishedAt  time.Time        `json:"finishedAt"`
}

// MatchStore defines the interface for persistent match results.
type MatchStore interface {
	// SaveMatch inserts one finished match.
	SaveMatch(ctx context.Context, result MatchResult) error
	// RecentMatches lists the latest finished matches, newest first. An empty
	// roomCode lists across all rooms.
	RecentMatches(ctx context.Context, roomCode string, limit int) ([]MatchResult, error)
	// Close releases database resources.
	Close() error
}
