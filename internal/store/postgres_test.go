package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballroyale/server/internal/game"
)

func getTestDatabaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}
	return url
}

func setupTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := getTestDatabaseURL(t)
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, url)
	require.NoError(t, err)

	// Clean up matches table for test isolation
	_, err = s.pool.Exec(ctx, "DELETE FROM matches")
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func testMatch(id, roomCode string, finishedAt time.Time) MatchResult {
	return MatchResult{
		ID:          id,
		RoomCode:    roomCode,
		Mode:        "classic",
		WinnerID:    "p2",
		WinnerName:  "Bora",
		PlayerCount: 2,
		Duration:    95 * time.Second,
		Placements: []game.Placement{
			{PlayerID: "p2", Name: "Bora", Rank: 1, Points: 100, Eliminations: 1, SurvivalMS: 95000},
			{PlayerID: "p1", Name: "Aram", Rank: 2, Points: 75, Eliminations: 0, SurvivalMS: 80000},
		},
		FinishedAt: finishedAt.UTC().Truncate(time.Millisecond),
	}
}

func TestPostgresStore_SaveAndList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	match := testMatch("match-001", "AAAA", time.Now())
	require.NoError(t, s.SaveMatch(ctx, match))

	results, err := s.RecentMatches(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, match.ID, got.ID)
	assert.Equal(t, "AAAA", got.RoomCode)
	assert.Equal(t, "classic", got.Mode)
	assert.Equal(t, "p2", got.WinnerID)
	assert.Equal(t, "Bora", got.WinnerName)
	assert.Equal(t, 2, got.PlayerCount)
	assert.Equal(t, 95*time.Second, got.Duration)
	assert.Equal(t, match.Placements, got.Placements)
	assert.WithinDuration(t, match.FinishedAt, got.FinishedAt, time.Millisecond)
}

func TestPostgresStore_RecentMatches_NewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		match := testMatch(fmt.Sprintf("match-%03d", i), "AAAA", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.SaveMatch(ctx, match))
	}

	results, err := s.RecentMatches(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "match-002", results[0].ID)
	assert.Equal(t, "match-001", results[1].ID)
	assert.Equal(t, "match-000", results[2].ID)
}

func TestPostgresStore_RecentMatches_RoomFilter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, s.SaveMatch(ctx, testMatch("match-a", "AAAA", now)))
	require.NoError(t, s.SaveMatch(ctx, testMatch("match-b", "BBBB", now.Add(time.Second))))

	results, err := s.RecentMatches(ctx, "BBBB", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "match-b", results[0].ID)
}

func TestPostgresStore_RecentMatches_Limit(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		match := testMatch(fmt.Sprintf("match-%03d", i), "AAAA", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.SaveMatch(ctx, match))
	}

	results, err := s.RecentMatches(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "match-004", results[0].ID)
	assert.Equal(t, "match-003", results[1].ID)
}

func TestPostgresStore_RecentMatches_Empty(t *testing.T) {
	s := setupTestStore(t)

	results, err := s.RecentMatches(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPostgresStore_EmptyPlacementsScanToSlice(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	match := testMatch("match-empty", "AAAA", time.Now())
	match.Placements = nil
	require.NoError(t, s.SaveMatch(ctx, match))

	results, err := s.RecentMatches(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotNil(t, results[0].Placements)
	assert.Empty(t, results[0].Placements)
}

func TestPostgresStore_DuplicateID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	match := testMatch("match-dup", "AAAA", time.Now())
	require.NoError(t, s.SaveMatch(ctx, match))
	assert.Error(t, s.SaveMatch(ctx, match))
}
