package defense

import (
	"context"
	"fmt"

	"github.com/Mereki/three-point-predictor/internal/constants"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/Mereki/three-point-predictor/internal/metrics"
	"github.com/Mereki/three-point-predictor/internal/position"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type ProfileKey struct {
	TeamID int
	Season string
}

func (k ProfileKey) String() string {
	return fmt.Sprintf("%d_%s", k.TeamID, k.Season)
}

// ProfileStore caches aggregated profiles. Entries never expire on their own.
type ProfileStore interface {
	GetProfile(ctx context.Context, key ProfileKey) (domain.DefenseProfile, bool, error)
	PutProfile(ctx context.Context, key ProfileKey, profile domain.DefenseProfile) error
	DeleteProfile(ctx context.Context, key ProfileKey) error
}

type PositionStore interface {
	GetPosition(ctx context.Context, playerID int) (domain.PositionGroup, bool, error)
	PutPosition(ctx context.Context, playerID int, group domain.PositionGroup) error
}

type BoxScoreSource interface {
	GetTeamGameLog(ctx context.Context, teamID int, season string) ([]domain.TeamGame, error)
	GetBoxScore(ctx context.Context, gameID string) (*domain.BoxScore, error)
}

type PositionSource interface {
	GetPlayerPosition(ctx context.Context, playerID int) (string, error)
}

// PositionResolver classifies players by id, remembering successful lookups.
type PositionResolver struct {
	source PositionSource
	store  PositionStore
	logger zerolog.Logger
}

func NewPositionResolver(source PositionSource, store PositionStore, logger zerolog.Logger) *PositionResolver {
	return &PositionResolver{source: source, store: store, logger: logger}
}

// Group falls back to guard when the player's position cannot be fetched; the
// fallback is not cached so a later lookup can still succeed.
func (r *PositionResolver) Group(ctx context.Context, playerID int) domain.PositionGroup {
	if group, ok, err := r.store.GetPosition(ctx, playerID); err == nil && ok {
		return group
	} else if err != nil {
		r.logger.Warn().Err(err).Int("player_id", playerID).Msg("position cache read failed")
	}

	label, err := r.source.GetPlayerPosition(ctx, playerID)
	if err != nil {
		r.logger.Warn().Err(err).Int("player_id", playerID).Msg("failed to fetch player position, defaulting to guard")
		return domain.Guard
	}

	group := position.Classify(label)
	if err := r.store.PutPosition(ctx, playerID, group); err != nil {
		r.logger.Warn().Err(err).Int("player_id", playerID).Msg("failed to cache player position")
	}
	return group
}

// Aggregator is the box-score strategy: it rebuilds the opponent's defense by
// position from the players who shot against it in its last completed games.
type Aggregator struct {
	games     BoxScoreSource
	positions *PositionResolver
	profiles  ProfileStore
	season    string
	maxGames  int
	group     singleflight.Group
	logger    zerolog.Logger
}

func NewAggregator(games BoxScoreSource, positions *PositionResolver, profiles ProfileStore, season string, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		games:     games,
		positions: positions,
		profiles:  profiles,
		season:    season,
		maxGames:  constants.DefenseGamesAnalyzed,
		logger:    logger,
	}
}

func (a *Aggregator) Estimate(ctx context.Context, opponent domain.Team) (domain.DefenseProfile, error) {
	key := ProfileKey{TeamID: opponent.ID, Season: a.season}

	cached, ok, err := a.profiles.GetProfile(ctx, key)
	if err != nil {
		a.logger.Warn().Err(err).Str("key", key.String()).Msg("defense cache read failed")
	}
	if ok {
		metrics.DefenseCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.DefenseCacheLookups.WithLabelValues("miss").Inc()

	// The shared aggregation runs detached so one caller leaving does not
	// fail the others that joined it.
	ch := a.group.DoChan(key.String(), func() (any, error) {
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.RequestTimeout)
		defer cancel()
		return a.compute(computeCtx, key)
	})

	select {
	case <-ctx.Done():
		return domain.DefenseProfile{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.DefenseProfile{}, res.Err
		}
		if res.Shared {
			a.logger.Debug().Str("key", key.String()).Msg("joined in-flight defense aggregation")
		}
		return res.Val.(domain.DefenseProfile), nil
	}
}

// Invalidate drops the cached profile for a team so the next Estimate recomputes it.
func (a *Aggregator) Invalidate(ctx context.Context, teamID int) error {
	return a.profiles.DeleteProfile(ctx, ProfileKey{TeamID: teamID, Season: a.season})
}

func (a *Aggregator) compute(ctx context.Context, key ProfileKey) (domain.DefenseProfile, error) {
	log := a.logger.With().Int("team_id", key.TeamID).Str("season", key.Season).Logger()
	log.Info().Msg("calculating position defense")

	games, err := a.games.GetTeamGameLog(ctx, key.TeamID, key.Season)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.DefenseProfile{}, ctxErr
		}
		log.Warn().Err(err).Msg("failed to fetch team game log, using league baseline")
		return domain.BaselineProfile(), nil
	}

	var completed []domain.TeamGame
	for _, g := range games {
		if g.Completed() {
			completed = append(completed, g)
		}
	}
	if len(completed) == 0 {
		log.Info().Msg("no completed games, using league baseline")
		return domain.BaselineProfile(), nil
	}

	limit := min(a.maxGames, len(completed))
	boxes := make([]*domain.BoxScore, 0, limit)
	for _, g := range completed {
		if len(boxes) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return domain.DefenseProfile{}, err
		}

		box, err := a.games.GetBoxScore(ctx, g.GameID)
		if err != nil {
			log.Warn().Err(err).Str("game_id", g.GameID).Msg("failed to fetch box score, skipping game")
			continue
		}
		if !box.HasPlayerStats() {
			log.Debug().Str("game_id", g.GameID).Msg("no box score data, skipping game")
			continue
		}
		if _, ok := box.OpponentOf(key.TeamID); !ok {
			log.Debug().Str("game_id", g.GameID).Msg("could not identify opponent, skipping game")
			continue
		}
		boxes = append(boxes, box)
	}

	profile, used := AggregateBoxScores(key.TeamID, boxes, func(playerID int) domain.PositionGroup {
		return a.positions.Group(ctx, playerID)
	})
	// position lookups fall back to guard once ctx is done, so a profile
	// built past that point is skewed and must not be cached
	if err := ctx.Err(); err != nil {
		return domain.DefenseProfile{}, err
	}
	if used == 0 {
		log.Warn().Msg("could not process any games, using league baseline")
		return profile, nil
	}

	if err := a.profiles.PutProfile(ctx, key, profile); err != nil {
		log.Warn().Err(err).Msg("failed to cache defense profile")
	}

	log.Info().
		Int("games", used).
		Float64("guard", profile.Guard).
		Float64("forward", profile.Forward).
		Float64("center", profile.Center).
		Float64("overall", profile.Overall).
		Msg("position defense calculated")
	return profile, nil
}
