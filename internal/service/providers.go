package service

import (
	"context"
	"time"

	"github.com/Mereki/three-point-predictor/internal/domain"
)

// StatsProvider is the subset of the stats.nba.com client the services use.
type StatsProvider interface {
	GetPlayerGameLog(ctx context.Context, playerID int, season string) ([]domain.GameLogEntry, error)
	GetPlayerPosition(ctx context.Context, playerID int) (string, error)
	GetTeamRoster(ctx context.Context, teamID int, season string) ([]domain.Player, error)
	GetAllPlayers(ctx context.Context, season string) ([]domain.Player, error)
	GetScoreboard(ctx context.Context, date time.Time) ([]domain.ScheduledGame, error)
}

type InjuryProvider interface {
	GetTeamInjuries(ctx context.Context, team domain.Team) ([]domain.InjuryRecord, error)
}

type PlayerIndex interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Player, error)
	ReplaceIndex(ctx context.Context, season string, players []domain.Player, syncedAt time.Time) error
	ShouldRefresh(ctx context.Context, season string, ttl time.Duration) (bool, error)
}

type ScanStore interface {
	Save(ctx context.Context, run *domain.ScanRun) error
	Recent(ctx context.Context, limit int) ([]domain.ScanRun, error)
}
