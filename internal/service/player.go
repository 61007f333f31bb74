package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mereki/three-point-predictor/internal/config"
	"github.com/Mereki/three-point-predictor/internal/constants"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/rs/zerolog"
)

type PlayerService struct {
	stats  StatsProvider
	index  PlayerIndex
	season string
	ttl    time.Duration
	logger zerolog.Logger
}

func NewPlayerService(stats StatsProvider, index PlayerIndex, cfg *config.Config, logger zerolog.Logger) *PlayerService {
	return &PlayerService{stats: stats, index: index, season: cfg.Season, ttl: cfg.PlayerIndexTTL, logger: logger}
}

// FindByName returns the best match for a case-insensitive name fragment.
func (s *PlayerService) FindByName(ctx context.Context, name string) (*domain.Player, error) {
	players, err := s.Search(ctx, name, 1)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	return &players[0], nil
}

func (s *PlayerService) Search(ctx context.Context, query string, limit int) ([]domain.Player, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty name", ErrPlayerNotFound)
	}
	if limit <= 0 {
		limit = constants.SearchResultLimit
	}

	s.ensureIndex(ctx)

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	s.logger.Debug().Str("query", query).Msg("searching players")
	players, err := s.index.Search(dbCtx, query, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to search players")
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	s.logger.Info().Int("count", len(players)).Str("query", query).Msg("search completed")
	return players, nil
}

// ensureIndex refreshes the league player index when it is stale. A failed
// refresh leaves the previous index in place.
func (s *PlayerService) ensureIndex(ctx context.Context) {
	shouldRefresh, err := s.index.ShouldRefresh(ctx, s.season, s.ttl)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to check player index freshness")
		return
	}
	if !shouldRefresh {
		return
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	players, err := s.stats.GetAllPlayers(apiCtx, s.season)
	if err != nil {
		s.logger.Warn().Err(err).Str("season", s.season).Msg("failed to refresh player index")
		return
	}
	if err := s.index.ReplaceIndex(ctx, s.season, players, time.Now()); err != nil {
		s.logger.Warn().Err(err).Str("season", s.season).Msg("failed to store player index")
		return
	}
	s.logger.Info().Int("players", len(players)).Str("season", s.season).Msg("player index refreshed")
}
