package fx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Mereki/three-point-predictor/internal/api"
	"github.com/Mereki/three-point-predictor/internal/cache"
	"github.com/Mereki/three-point-predictor/internal/config"
	"github.com/Mereki/three-point-predictor/internal/database"
	"github.com/Mereki/three-point-predictor/internal/defense"
	"github.com/Mereki/three-point-predictor/internal/logger"
	"github.com/Mereki/three-point-predictor/internal/predictor"
	"github.com/Mereki/three-point-predictor/internal/repository"
	"github.com/Mereki/three-point-predictor/internal/scheduler"
	"github.com/Mereki/three-point-predictor/internal/server"
	"github.com/Mereki/three-point-predictor/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ProvideDefenseStores picks the backing store for defense profiles and
// player positions from DEFENSE_CACHE.
func ProvideDefenseStores(lc fx.Lifecycle, cfg *config.Config, sqlDB *sql.DB, logger zerolog.Logger) (defense.ProfileStore, defense.PositionStore, error) {
	switch cfg.DefenseCache {
	case config.CacheSQLite:
		repo := repository.NewDefenseRepository(sqlDB, logger)
		return repo, repo, nil
	case config.CacheRedis:
		r, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := r.Ping(ctx); err != nil {
					return fmt.Errorf("failed to reach redis: %w", err)
				}
				logger.Info().Msg("connected to redis defense cache")
				return nil
			},
			OnStop: func(context.Context) error {
				return r.Close()
			},
		})
		return r, r, nil
	default:
		m := cache.NewMemory()
		return m, m, nil
	}
}

func ProvideEstimator(cfg *config.Config, nba *api.NBAStatsClient, profiles defense.ProfileStore, positions defense.PositionStore, logger zerolog.Logger) defense.Estimator {
	if cfg.DefenseStrategy == config.StrategyEstimate {
		return defense.NewClosedForm(nba, cfg.Season, logger)
	}
	resolver := defense.NewPositionResolver(nba, positions, logger)
	return defense.NewAggregator(nba, resolver, profiles, cfg.Season, logger)
}

func ProvideRegistry(cfg *config.Config) (*predictor.Registry, error) {
	return predictor.LoadRegistry(cfg.DefenderRegistryPath)
}

func ProvidePlayerService(nba *api.NBAStatsClient, repo *repository.PlayerRepository, cfg *config.Config, logger zerolog.Logger) *service.PlayerService {
	return service.NewPlayerService(nba, repo, cfg, logger)
}

func ProvideAnalysisService(nba *api.NBAStatsClient, espn *api.ESPNClient, est defense.Estimator, p *predictor.Predictor, cfg *config.Config, logger zerolog.Logger) *service.AnalysisService {
	return service.NewAnalysisService(nba, espn, est, p, cfg, logger)
}

func ProvideScanService(nba *api.NBAStatsClient, analysis *service.AnalysisService, repo *repository.ScanRepository, cfg *config.Config, logger zerolog.Logger) *service.ScanService {
	return service.NewScanService(nba, analysis, repo, cfg, logger)
}

func ProvideServer(
	players *service.PlayerService,
	teams *service.TeamService,
	analysis *service.AnalysisService,
	scans *service.ScanService,
	sqlDB *sql.DB,
	cfg *config.Config,
	logger zerolog.Logger,
) *server.Server {
	return server.New(players, teams, analysis, scans, sqlDB, cfg, logger)
}

func ProvideWarmupJob(scans *service.ScanService, logger zerolog.Logger) *scheduler.WarmupJob {
	return scheduler.NewWarmupJob(scans, logger)
}

// Module is everything both binaries share; each adds its own logger.
var Module = fx.Options(
	config.Module,
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewScanRepository),
	// api clients
	fx.Provide(api.NewNBAStatsClient),
	fx.Provide(api.NewESPNClient),
	// prediction
	fx.Provide(ProvideDefenseStores),
	fx.Provide(ProvideEstimator),
	fx.Provide(ProvideRegistry),
	fx.Provide(predictor.New),
	// svc
	fx.Provide(ProvidePlayerService),
	fx.Provide(service.NewTeamService),
	fx.Provide(ProvideAnalysisService),
	fx.Provide(ProvideScanService),
)

var ServerModule = fx.Options(
	logger.Module,
	Module,
	fx.Provide(ProvideServer),
	fx.Provide(scheduler.New),
	fx.Provide(ProvideWarmupJob),
	fx.Invoke(scheduler.Register),
)

var CLIModule = fx.Options(
	logger.ConsoleModule,
	Module,
)
