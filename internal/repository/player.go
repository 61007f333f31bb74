package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Mereki/three-point-predictor/internal/constants"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/rs/zerolog"
)

// PlayerRepository is the league player index used for name search.
type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		db:     sqlDB,
		logger: logger,
	}
}

func (r *PlayerRepository) Get(ctx context.Context, id int) (*domain.Player, error) {
	var p domain.Player
	err := r.db.QueryRowContext(ctx,
		`SELECT id, full_name, team_id, team_abbreviation, position FROM players WHERE id = ?`, id,
	).Scan(&p.ID, &p.FullName, &p.TeamID, &p.TeamAbbreviation, &p.Position)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Search matches a case-insensitive substring of the full name. Exact and
// prefix matches sort first.
func (r *PlayerRepository) Search(ctx context.Context, query string, limit int) ([]domain.Player, error) {
	searchPattern := "%" + query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, full_name, team_id, team_abbreviation, position
		FROM players
		WHERE full_name LIKE ?
		ORDER BY lower(full_name) = lower(?) DESC, full_name LIKE ? DESC, full_name
		LIMIT ?`,
		searchPattern, query, query+"%", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.FullName, &p.TeamID, &p.TeamAbbreviation, &p.Position); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// ReplaceIndex upserts the season's players and records when the index was
// synced, in one transaction.
func (r *PlayerRepository) ReplaceIndex(ctx context.Context, season string, players []domain.Player, syncedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO players (id, full_name, team_id, team_abbreviation, position, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			full_name = excluded.full_name,
			team_id = excluded.team_id,
			team_abbreviation = excluded.team_abbreviation,
			position = CASE WHEN excluded.position = '' THEN players.position ELSE excluded.position END,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare player upsert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < len(players); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(players))
		for _, p := range players[i:end] {
			if _, err := stmt.ExecContext(ctx, p.ID, p.FullName, p.TeamID, p.TeamAbbreviation, p.Position, syncedAt); err != nil {
				return fmt.Errorf("failed to upsert player %d: %w", p.ID, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO player_index_sync (season, player_count, synced_at) VALUES (?, ?, ?)
		ON CONFLICT (season) DO UPDATE SET player_count = excluded.player_count, synced_at = excluded.synced_at`,
		season, len(players), syncedAt,
	); err != nil {
		return fmt.Errorf("failed to record index sync: %w", err)
	}

	return tx.Commit()
}

func (r *PlayerRepository) ShouldRefresh(ctx context.Context, season string, ttl time.Duration) (bool, error) {
	var syncedAt time.Time
	err := r.db.QueryRowContext(ctx, `SELECT synced_at FROM player_index_sync WHERE season = ?`, season).Scan(&syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug().Str("season", season).Msg("player index never synced, should refresh")
		return true, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("season", season).Msg("failed to read player index sync")
		return false, err
	}

	timeSince := time.Since(syncedAt)
	shouldRefresh := timeSince > ttl
	r.logger.Debug().
		Str("season", season).
		Time("synced_at", syncedAt).
		Dur("time_since", timeSince).
		Dur("ttl", ttl).
		Bool("should_refresh", shouldRefresh).
		Msg("checking if player index should refresh")

	return shouldRefresh, nil
}
