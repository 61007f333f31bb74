package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mereki/three-point-predictor/internal/database"
	"github.com/Mereki/three-point-predictor/internal/defense"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestPlayerIndex(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository(openTestDB(t), zerolog.Nop())

	refresh, err := repo.ShouldRefresh(ctx, "2025-26", time.Hour)
	require.NoError(t, err)
	assert.True(t, refresh, "never synced")

	players := []domain.Player{
		{ID: 201939, FullName: "Stephen Curry", TeamID: 1610612744, TeamAbbreviation: "GSW"},
		{ID: 1626172, FullName: "Kevon Looney", TeamID: 1610612740, TeamAbbreviation: "NOP"},
		{ID: 1630228, FullName: "Seth Curry", TeamID: 1610612744, TeamAbbreviation: "GSW"},
		{ID: 203999, FullName: "Nikola Jokic", TeamID: 1610612743, TeamAbbreviation: "DEN", Position: "C"},
	}
	require.NoError(t, repo.ReplaceIndex(ctx, "2025-26", players, time.Now()))

	refresh, err = repo.ShouldRefresh(ctx, "2025-26", time.Hour)
	require.NoError(t, err)
	assert.False(t, refresh)

	refresh, err = repo.ShouldRefresh(ctx, "2025-26", -time.Second)
	require.NoError(t, err)
	assert.True(t, refresh, "expired")

	found, err := repo.Search(ctx, "curry", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Seth Curry", found[0].FullName)
	assert.Equal(t, "Stephen Curry", found[1].FullName)

	found, err = repo.Search(ctx, "stephen curry", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 201939, found[0].ID)

	found, err = repo.Search(ctx, "o", 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	// a resync without a position keeps the stored one
	require.NoError(t, repo.ReplaceIndex(ctx, "2025-26", []domain.Player{
		{ID: 203999, FullName: "Nikola Jokic", TeamID: 1610612743, TeamAbbreviation: "DEN"},
	}, time.Now()))
	p, err := repo.Get(ctx, 203999)
	require.NoError(t, err)
	assert.Equal(t, "C", p.Position)

	_, err = repo.Get(ctx, 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDefenseRepositoryProfiles(t *testing.T) {
	ctx := context.Background()
	repo := NewDefenseRepository(openTestDB(t), zerolog.Nop())
	key := defense.ProfileKey{TeamID: 1610612747, Season: "2025-26"}

	_, ok, err := repo.GetProfile(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	profile := domain.DefenseProfile{Guard: 0.41, Forward: 0.35, Center: 0.30, Overall: 0.37, Source: domain.SourceAggregated, GamesUsed: 10}
	require.NoError(t, repo.PutProfile(ctx, key, profile))
	got, ok, err := repo.GetProfile(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, profile, got)

	profile.Guard = 0.39
	require.NoError(t, repo.PutProfile(ctx, key, profile))
	got, _, _ = repo.GetProfile(ctx, key)
	assert.Equal(t, 0.39, got.Guard)

	require.NoError(t, repo.DeleteProfile(ctx, key))
	_, ok, err = repo.GetProfile(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

type lakersGames struct{ logCalls int }

func (g *lakersGames) GetTeamGameLog(context.Context, int, string) ([]domain.TeamGame, error) {
	g.logCalls++
	return []domain.TeamGame{{GameID: "0022500001", Outcome: "W"}}, nil
}

func (g *lakersGames) GetBoxScore(_ context.Context, gameID string) (*domain.BoxScore, error) {
	return &domain.BoxScore{GameID: gameID, TeamIDs: []int{1610612747, 1610612744}, Lines: []domain.BoxScoreLine{
		{PlayerID: 201939, TeamID: 1610612744, Made: 3, Attempted: 6},
	}}, nil
}

type guardPositions struct{}

func (guardPositions) GetPlayerPosition(context.Context, int) (string, error) { return "G", nil }

func TestDefenseRepositoryProfilesFromEarlierProcessAreMisses(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "threes.db")
	key := defense.ProfileKey{TeamID: 1610612747, Season: "2025-26"}

	db, err := database.Open(path, zerolog.Nop())
	require.NoError(t, err)
	previous := NewDefenseRepository(db, zerolog.Nop())
	previous.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }
	stale := domain.DefenseProfile{Guard: 0.20, Forward: 0.20, Center: 0.20, Overall: 0.20, Source: domain.SourceAggregated, GamesUsed: 10}
	require.NoError(t, previous.PutProfile(ctx, key, stale))
	require.NoError(t, previous.PutPosition(ctx, 201939, domain.Guard))
	require.NoError(t, db.Close())

	db = openFileDB(t, path)
	repo := NewDefenseRepository(db, zerolog.Nop())
	_, ok, err := repo.GetProfile(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "profile from a previous run")
	_, ok, err = repo.GetPosition(ctx, 201939)
	require.NoError(t, err)
	assert.True(t, ok, "positions persist")

	games := &lakersGames{}
	agg := defense.NewAggregator(games, defense.NewPositionResolver(guardPositions{}, repo, zerolog.Nop()), repo, "2025-26", zerolog.Nop())
	p, err := agg.Estimate(ctx, domain.Team{ID: 1610612747})
	require.NoError(t, err)
	assert.Equal(t, 1, games.logCalls)
	assert.InDelta(t, 0.5, p.Guard, 1e-9)
	assert.Equal(t, 1, p.GamesUsed)

	// recomputed this run, so now served from the store
	again, err := agg.Estimate(ctx, domain.Team{ID: 1610612747})
	require.NoError(t, err)
	assert.Equal(t, p, again)
	assert.Equal(t, 1, games.logCalls)
}

func openFileDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := database.Open(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDefenseRepositoryPositions(t *testing.T) {
	ctx := context.Background()
	repo := NewDefenseRepository(openTestDB(t), zerolog.Nop())

	_, ok, err := repo.GetPosition(ctx, 2544)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.PutPosition(ctx, 2544, domain.Forward))
	require.NoError(t, repo.PutPosition(ctx, 2544, domain.Guard))
	g, ok, err := repo.GetPosition(ctx, 2544)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Guard, g)
}

func TestScanRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewScanRepository(openTestDB(t), zerolog.Nop())

	older := &domain.ScanRun{GameDate: "2025-11-04", Season: "2025-26", Games: 5, Analyzed: 60, CreatedAt: time.Now().Add(-24 * time.Hour)}
	require.NoError(t, repo.Save(ctx, older))
	assert.NotEmpty(t, older.ID)

	newer := &domain.ScanRun{
		GameDate: "2025-11-05", Season: "2025-26", Games: 2, Analyzed: 30, CreatedAt: time.Now(),
		Picks: []domain.Pick{
			{PlayerID: 201939, PlayerName: "Stephen Curry", Matchup: "GSW vs LAL", Prediction: 4.8, ConfidenceScore: 88, Tier: domain.TierHigh, RecentAverage: 5.2, OpponentOverall: 0.38},
			{PlayerID: 1628369, PlayerName: "Jayson Tatum", Matchup: "BOS vs NYK", Prediction: 3.6, ConfidenceScore: 72, Tier: domain.TierHigh, RecentAverage: 3.4, OpponentOverall: 0.37},
		},
	}
	require.NoError(t, repo.Save(ctx, newer))
	for _, p := range newer.Picks {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, newer.ID, p.RunID)
	}

	runs, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, "2025-11-05", runs[0].GameDate)
	require.Len(t, runs[0].Picks, 2)
	assert.Equal(t, "Stephen Curry", runs[0].Picks[0].PlayerName)
	assert.Equal(t, domain.TierHigh, runs[0].Picks[1].Tier)
	assert.Equal(t, 72, runs[0].Picks[1].ConfidenceScore)
	assert.Empty(t, runs[1].Picks)

	runs, err = repo.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
