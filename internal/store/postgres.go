package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ballroyale/server/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
    id TEXT PRIMARY KEY,
    room_code TEXT NOT NULL,
    game_mode TEXT NOT NULL,
    winner_id TEXT NOT NULL DEFAULT '',
    winner_name TEXT NOT NULL DEFAULT '',
    player_count INT NOT NULL,
    duration_ms BIGINT NOT NULL,
    placements JSONB NOT NULL DEFAULT '[]',
    finished_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_matches_room_code ON matches(room_code);
CREATE INDEX IF NOT EXISTS idx_matches_finished_at ON matches(finished_at DESC);
`

// PostgresStore implements MatchStore using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and initializes the schema.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// SaveMatch inserts one finished match.
func (s *PostgresStore) SaveMatch(ctx context.Context, result MatchResult) error {
	placements, err := json.Marshal(result.Placements)
	if err != nil {
		return fmt.Errorf("encode placements: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO matches (id, room_code, game_mode, winner_id, winner_name, player_count, duration_ms, placements, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		result.ID, result.RoomCode, result.Mode, result.WinnerID, result.WinnerName,
		result.PlayerCount, result.Duration.Milliseconds(), placements, result.FinishedAt)
	return err
}

// RecentMatches lists the latest finished matches, newest first.
func (s *PostgresStore) RecentMatches(ctx context.Context, roomCode string, limit int) ([]MatchResult, error) {
	query := `SELECT id, room_code, game_mode, winner_id, winner_name, player_count, duration_ms, placements, finished_at
	          FROM matches`
	args := []any{}
	if roomCode != "" {
		query += ` WHERE room_code = $1 ORDER BY finished_at DESC LIMIT $2`
		args = append(args, roomCode, limit)
	} else {
		query += ` ORDER BY finished_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MatchResult
	for rows.Next() {
		result, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// Close releases database resources.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanMatch(row pgx.Row) (MatchResult, error) {
	var (
		result     MatchResult
		durationMS int64
		placements []byte
	)
	err := row.Scan(&result.ID, &result.RoomCode, &result.Mode, &result.WinnerID, &result.WinnerName,
		&result.PlayerCount, &durationMS, &placements, &result.FinishedAt)
	if err != nil {
		return MatchResult{}, err
	}
	result.Duration = time.Duration(durationMS) * time.Millisecond
	if err := json.Unmarshal(placements, &result.Placements); err != nil {
		return MatchResult{}, fmt.Errorf("decode placements: %w", err)
	}
	if result.Placements == nil {
		result.Placements = []game.Placement{}
	}
	return result, nil
}
