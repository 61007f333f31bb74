package predictor

import (
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/Mereki/three-point-predictor/internal/metrics"
	"github.com/rs/zerolog"
)

// Predictor composes prediction, injury adjustment and confidence scoring.
// It is stateless apart from the read-only registry.
type Predictor struct {
	registry *Registry
	logger   zerolog.Logger
}

func New(registry *Registry, logger zerolog.Logger) *Predictor {
	return &Predictor{registry: registry, logger: logger}
}

func (p *Predictor) Registry() *Registry {
	return p.registry
}

func (p *Predictor) Analyze(stats *domain.PlayerRecentStats, defense domain.DefenseProfile, group domain.PositionGroup, injuries []domain.InjuryRecord, opponentAbbrev string) domain.PredictionResult {
	base := Predict(stats, defense, group)
	adjusted, injured := p.registry.AdjustForInjuries(base, injuries, opponentAbbrev)
	score, flags := p.registry.Score(stats, defense, group, injuries, opponentAbbrev)
	tier := TierFor(score)

	metrics.Predictions.WithLabelValues(string(tier)).Inc()
	p.logger.Debug().
		Str("opponent", opponentAbbrev).
		Str("group", string(group)).
		Str("source", string(defense.Source)).
		Float64("base", base).
		Float64("adjusted", adjusted).
		Int("score", score).
		Msg("prediction computed")

	return domain.PredictionResult{
		BasePrediction:      base,
		AdjustedPrediction:  adjusted,
		InjuredKeyDefenders: injured,
		ConfidenceScore:     score,
		Tier:                tier,
		Flags:               flags,
	}
}
