package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Mereki/three-point-predictor/internal/domain"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// ScanRepository keeps the history of slate scans and their picks.
type ScanRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewScanRepository(sqlDB *sql.DB, logger zerolog.Logger) *ScanRepository {
	return &ScanRepository{db: sqlDB, logger: logger}
}

// Save stores the run and its picks, assigning ids where missing. Picks keep
// their slice order as rank.
func (r *ScanRepository) Save(ctx context.Context, run *domain.ScanRun) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if run.ID == "" {
		if run.ID, err = gonanoid.New(); err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scan_runs (id, game_date, season, games, analyzed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.GameDate, run.Season, run.Games, run.Analyzed, run.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert scan run: %w", err)
	}

	for i := range run.Picks {
		pick := &run.Picks[i]
		if pick.ID == "" {
			if pick.ID, err = gonanoid.New(); err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}
		pick.RunID = run.ID

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO scan_picks (id, run_id, pick_rank, player_id, player_name, matchup, prediction,
				confidence_score, tier, recent_average, opponent_overall)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			pick.ID, pick.RunID, i, pick.PlayerID, pick.PlayerName, pick.Matchup, pick.Prediction,
			pick.ConfidenceScore, string(pick.Tier), pick.RecentAverage, pick.OpponentOverall,
		); err != nil {
			return fmt.Errorf("failed to insert scan pick: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	r.logger.Debug().Str("run_id", run.ID).Int("picks", len(run.Picks)).Msg("scan run saved")
	return nil
}

// Recent returns the latest runs, newest first, each with its picks in rank order.
func (r *ScanRepository) Recent(ctx context.Context, limit int) ([]domain.ScanRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, game_date, season, games, analyzed, created_at
		FROM scan_runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.ScanRun
	for rows.Next() {
		var run domain.ScanRun
		if err := rows.Scan(&run.ID, &run.GameDate, &run.Season, &run.Games, &run.Analyzed, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range runs {
		picks, err := r.picks(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Picks = picks
	}
	return runs, nil
}

func (r *ScanRepository) picks(ctx context.Context, runID string) ([]domain.Pick, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, player_id, player_name, matchup, prediction, confidence_score, tier,
			recent_average, opponent_overall
		FROM scan_picks WHERE run_id = ? ORDER BY pick_rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var picks []domain.Pick
	for rows.Next() {
		var p domain.Pick
		if err := rows.Scan(&p.ID, &p.RunID, &p.PlayerID, &p.PlayerName, &p.Matchup, &p.Prediction,
			&p.ConfidenceScore, &p.Tier, &p.RecentAverage, &p.OpponentOverall); err != nil {
			return nil, err
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}
