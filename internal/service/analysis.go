package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mereki/three-point-predictor/internal/config"
	"github.com/Mereki/three-point-predictor/internal/constants"
	"github.com/Mereki/three-point-predictor/internal/defense"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/Mereki/three-point-predictor/internal/metrics"
	"github.com/Mereki/three-point-predictor/internal/position"
	"github.com/Mereki/three-point-predictor/internal/predictor"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// OpponentContext is everything about an opponent that is shared by every
// player analysed against it.
type OpponentContext struct {
	Team     domain.Team
	Defense  domain.DefenseProfile
	Injuries []domain.InjuryRecord
}

type invalidator interface {
	Invalidate(ctx context.Context, teamID int) error
}

type AnalysisService struct {
	stats     StatsProvider
	injuries  InjuryProvider
	estimator defense.Estimator
	predictor *predictor.Predictor
	season    string
	minVolume float64
	logger    zerolog.Logger
}

func NewAnalysisService(
	stats StatsProvider,
	injuries InjuryProvider,
	estimator defense.Estimator,
	p *predictor.Predictor,
	cfg *config.Config,
	logger zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		stats:     stats,
		injuries:  injuries,
		estimator: estimator,
		predictor: p,
		season:    cfg.Season,
		minVolume: cfg.MinAttemptsPerGame,
		logger:    logger,
	}
}

// OpponentContext fetches the opponent's defense profile and injury report in
// parallel. A missing injury report is treated as no injuries.
func (s *AnalysisService) OpponentContext(ctx context.Context, team domain.Team) (*OpponentContext, error) {
	oc := &OpponentContext{Team: team}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.estimator.Estimate(gCtx, team)
		if err != nil {
			return fmt.Errorf("failed to estimate defense for %s: %w", team.Abbreviation, err)
		}
		oc.Defense = profile
		return nil
	})
	g.Go(func() error {
		apiCtx, cancel := context.WithTimeout(gCtx, constants.ExternalAPITimeout)
		defer cancel()

		injuries, err := s.injuries.GetTeamInjuries(apiCtx, team)
		if err != nil {
			s.logger.Warn().Err(err).Str("team", team.Abbreviation).Msg("failed to fetch injuries, assuming none")
			return nil
		}
		oc.Injuries = injuries
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return oc, nil
}

// AnalyzeAgainst runs the full pipeline for one player. Players without
// enough games or volume come back wrapped in ErrSkipped.
func (s *AnalysisService) AnalyzeAgainst(ctx context.Context, player domain.Player, oc *OpponentContext) (*domain.Analysis, error) {
	log := s.logger.With().Int("player_id", player.ID).Str("opponent", oc.Team.Abbreviation).Logger()

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	entries, err := s.stats.GetPlayerGameLog(apiCtx, player.ID, s.season)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game log for %s: %w", player.FullName, err)
	}

	stats, err := domain.NewPlayerRecentStats(entries)
	if err != nil {
		metrics.SkippedAnalyses.WithLabelValues("insufficient_data").Inc()
		log.Debug().Err(err).Msg("skipping player")
		return nil, fmt.Errorf("%w: %w", ErrSkipped, err)
	}
	if stats.AttemptsPerGame() < s.minVolume {
		metrics.SkippedAnalyses.WithLabelValues("low_volume").Inc()
		log.Debug().Float64("attempts_per_game", stats.AttemptsPerGame()).Msg("skipping low volume shooter")
		return nil, fmt.Errorf("%w: %.1f 3PA/game", ErrLowVolume, stats.AttemptsPerGame())
	}

	label := s.positionLabel(ctx, player, log)
	group := position.Classify(label)
	result := s.predictor.Analyze(stats, oc.Defense, group, oc.Injuries, oc.Team.Abbreviation)

	return &domain.Analysis{
		Player:   player,
		Opponent: oc.Team,
		Position: position.Abbreviation(label),
		Group:    group,
		Stats:    *stats,
		Defense:  oc.Defense,
		Result:   result,
	}, nil
}

// positionLabel prefers the label already on the player (roster entries carry
// one) and otherwise asks the provider. An empty label classifies as a guard.
func (s *AnalysisService) positionLabel(ctx context.Context, player domain.Player, log zerolog.Logger) string {
	if player.Position != "" {
		return player.Position
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	label, err := s.stats.GetPlayerPosition(apiCtx, player.ID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to fetch player position, defaulting to guard")
		return ""
	}
	return label
}

func (s *AnalysisService) Analyze(ctx context.Context, player domain.Player, opponent domain.Team) (*domain.Analysis, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().Int("player_id", player.ID).Str("player", player.FullName).Str("opponent", opponent.Abbreviation).Msg("analyzing player")

	oc, err := s.OpponentContext(ctx, opponent)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeAgainst(ctx, player, oc)
}

// InvalidateDefense drops a cached defense profile. It reports false when the
// configured estimator keeps no cache.
func (s *AnalysisService) InvalidateDefense(ctx context.Context, team domain.Team) (bool, error) {
	inv, ok := s.estimator.(invalidator)
	if !ok {
		return false, nil
	}
	if err := inv.Invalidate(ctx, team.ID); err != nil {
		return false, fmt.Errorf("failed to invalidate defense for %s: %w", team.Abbreviation, err)
	}
	s.logger.Info().Str("team", team.Abbreviation).Msg("defense profile invalidated")
	return true, nil
}

// IsSkipped reports whether err marks a deliberately skipped player.
func IsSkipped(err error) bool {
	return errors.Is(err, ErrSkipped)
}
