package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ballroyale/server/internal/game"
)

const (
	subjectGameStarted      = "ballroyale.game.started"
	subjectPlayerEliminated = "ballroyale.player.eliminated"
	subjectGameEnded        = "ballroyale.game.ended"
)

// NATSFeed publishes lifecycle events to NATS subjects. Publish errors are
// logged and swallowed; the simulation never waits on the feed.
type NATSFeed struct {
	conn *nats.Conn
}

// ConnectNATS dials the NATS server and returns a feed backed by it.
func ConnectNATS(url string) (*NATSFeed, error) {
	opts := []nats.Option{
		nats.Name("ballroyale-server"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSFeed{conn: nc}, nil
}

type gameStartedEvent struct {
	RoomCode  string    `json:"roomCode"`
	Mode      string    `json:"mode"`
	Players   int       `json:"players"`
	Timestamp time.Time `json:"timestamp"`
}

type playerEliminatedEvent struct {
	RoomCode   string    `json:"roomCode"`
	PlayerID   string    `json:"playerId"`
	AttackerID string    `json:"attackerId,omitempty"`
	Order      int       `json:"order"`
	Timestamp  time.Time `json:"timestamp"`
}

type gameEndedEvent struct {
	RoomCode   string           `json:"roomCode"`
	WinnerID   string           `json:"winnerId"`
	Placements []game.Placement `json:"placements"`
	Timestamp  time.Time        `json:"timestamp"`
}

func (f *NATSFeed) GameStarted(roomCode, mode string, players int) {
	f.publish(subjectGameStarted, gameStartedEvent{
		RoomCode:  roomCode,
		Mode:      mode,
		Players:   players,
		Timestamp: time.Now(),
	})
}

func (f *NATSFeed) PlayerEliminated(roomCode, playerID, attackerID string, order int) {
	f.publish(subjectPlayerEliminated, playerEliminatedEvent{
		RoomCode:   roomCode,
		PlayerID:   playerID,
		AttackerID: attackerID,
		Order:      order,
		Timestamp:  time.Now(),
	})
}

func (f *NATSFeed) GameEnded(roomCode, winnerID string, placements []game.Placement) {
	f.publish(subjectGameEnded, gameEndedEvent{
		RoomCode:   roomCode,
		WinnerID:   winnerID,
		Placements: placements,
		Timestamp:  time.Now(),
	})
}

func (f *NATSFeed) publish(subject string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to encode event", "subject", subject, "error", err)
		return
	}
	if err := f.conn.Publish(subject, data); err != nil {
		slog.Error("failed to publish event", "subject", subject, "error", err)
	}
}

// Close drains the connection so buffered events flush before shutdown.
func (f *NATSFeed) Close() {
	if err := f.conn.Drain(); err != nil {
		f.conn.Close()
	}
}
