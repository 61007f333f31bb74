// Package defense estimates how well an opponent defends the three-point line
// against each position group.
package defense

import (
	"context"

	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/rs/zerolog"
)

// Estimator produces a defense profile for an opponent. Missing data is
// replaced by the league baseline; the only errors are context errors.
type Estimator interface {
	Estimate(ctx context.Context, opponent domain.Team) (domain.DefenseProfile, error)
}

type groupShape struct {
	baseline float64
	variance float64
}

// Centers take fewer threes and their splits are noisier, so the team-quality
// signal is dampened for them.
var groupShapes = map[domain.PositionGroup]groupShape{
	domain.Guard:   {baseline: 0.365, variance: 1.0},
	domain.Forward: {baseline: 0.360, variance: 0.95},
	domain.Center:  {baseline: 0.340, variance: 0.85},
}

// EstimateFromOverall spreads a team's overall three-point percentage allowed
// across the position groups.
func EstimateFromOverall(overallPct float64) domain.DefenseProfile {
	diff := overallPct - domain.LeagueBaseline
	adjust := func(g domain.PositionGroup) float64 {
		s := groupShapes[g]
		return s.baseline + diff*s.variance
	}
	return domain.DefenseProfile{
		Guard:   adjust(domain.Guard),
		Forward: adjust(domain.Forward),
		Center:  adjust(domain.Center),
		Overall: overallPct,
		Source:  domain.SourceEstimated,
	}
}

// OverallSource supplies a team's overall opponent three-point percentage.
// ok is false when the provider had no figure for the team.
type OverallSource interface {
	GetOpponentThreePointPct(ctx context.Context, teamID int, season string) (pct float64, ok bool, err error)
}

// ClosedForm is the cheap strategy: one provider call, then EstimateFromOverall.
type ClosedForm struct {
	source OverallSource
	season string
	logger zerolog.Logger
}

func NewClosedForm(source OverallSource, season string, logger zerolog.Logger) *ClosedForm {
	return &ClosedForm{source: source, season: season, logger: logger}
}

func (c *ClosedForm) Estimate(ctx context.Context, opponent domain.Team) (domain.DefenseProfile, error) {
	pct, ok, err := c.source.GetOpponentThreePointPct(ctx, opponent.ID, c.season)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.DefenseProfile{}, ctxErr
	}
	if err != nil || !ok {
		c.logger.Warn().
			Err(err).
			Int("team_id", opponent.ID).
			Str("season", c.season).
			Msg("team defense unavailable, using league baseline")
		profile := EstimateFromOverall(domain.LeagueBaseline)
		profile.Source = domain.SourceBaseline
		return profile, nil
	}

	profile := EstimateFromOverall(pct)
	c.logger.Debug().
		Int("team_id", opponent.ID).
		Float64("overall", pct).
		Msg("estimated position defense")
	return profile, nil
}
