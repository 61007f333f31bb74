package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Mereki/three-point-predictor/internal/defense"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/rs/zerolog"
)

// DefenseRepository persists aggregated defense profiles and player position
// groups. Positions survive restarts; profiles only count for the process that
// computed them, so a restart re-aggregates from the latest games.
type DefenseRepository struct {
	db     *sql.DB
	since  time.Time
	now    func() time.Time
	logger zerolog.Logger
}

func NewDefenseRepository(sqlDB *sql.DB, logger zerolog.Logger) *DefenseRepository {
	return &DefenseRepository{db: sqlDB, since: time.Now().UTC(), now: time.Now, logger: logger}
}

func (r *DefenseRepository) GetProfile(ctx context.Context, key defense.ProfileKey) (domain.DefenseProfile, bool, error) {
	var (
		p          domain.DefenseProfile
		computedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT guard, forward, center, overall, source, games_used, computed_at
		FROM defense_profiles WHERE team_id = ? AND season = ?`,
		key.TeamID, key.Season,
	).Scan(&p.Guard, &p.Forward, &p.Center, &p.Overall, &p.Source, &p.GamesUsed, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefenseProfile{}, false, nil
	}
	if err != nil {
		return domain.DefenseProfile{}, false, fmt.Errorf("failed to read defense profile: %w", err)
	}
	if computedAt.Before(r.since) {
		r.logger.Debug().
			Str("key", key.String()).
			Time("computed_at", computedAt).
			Msg("defense profile predates this process, treating as miss")
		return domain.DefenseProfile{}, false, nil
	}
	return p, true, nil
}

func (r *DefenseRepository) PutProfile(ctx context.Context, key defense.ProfileKey, p domain.DefenseProfile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO defense_profiles (team_id, season, guard, forward, center, overall, source, games_used, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (team_id, season) DO UPDATE SET
			guard = excluded.guard,
			forward = excluded.forward,
			center = excluded.center,
			overall = excluded.overall,
			source = excluded.source,
			games_used = excluded.games_used,
			computed_at = excluded.computed_at`,
		key.TeamID, key.Season, p.Guard, p.Forward, p.Center, p.Overall, string(p.Source), p.GamesUsed, r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store defense profile: %w", err)
	}
	r.logger.Debug().Str("key", key.String()).Msg("defense profile stored")
	return nil
}

func (r *DefenseRepository) DeleteProfile(ctx context.Context, key defense.ProfileKey) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM defense_profiles WHERE team_id = ? AND season = ?`, key.TeamID, key.Season)
	return err
}

func (r *DefenseRepository) GetPosition(ctx context.Context, playerID int) (domain.PositionGroup, bool, error) {
	var group string
	err := r.db.QueryRowContext(ctx, `SELECT position_group FROM player_positions WHERE player_id = ?`, playerID).Scan(&group)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read player position: %w", err)
	}
	return domain.PositionGroup(group), true, nil
}

func (r *DefenseRepository) PutPosition(ctx context.Context, playerID int, group domain.PositionGroup) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO player_positions (player_id, position_group, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET position_group = excluded.position_group, updated_at = excluded.updated_at`,
		playerID, string(group), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store player position: %w", err)
	}
	return nil
}
