// Package predictor turns a player's recent form and an opponent's defense
// profile into an expected number of made threes and a confidence score.
package predictor

import (
	"math"

	"github.com/Mereki/three-point-predictor/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// Predict scales the player's last-ten average by how generously the opponent
// defends the player's position group relative to the league.
func Predict(stats *domain.PlayerRecentStats, defense domain.DefenseProfile, group domain.PositionGroup) float64 {
	base := mean(stats.Last10Makes)
	multiplier := defense.AllowedFor(group) / domain.LeagueBaseline
	return roundTenth(base * multiplier)
}

func floats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(floats(xs), nil)
}

// popStdDev divides by n, not n-1.
func popStdDev(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	_, std := stat.PopMeanStdDev(floats(xs), nil)
	return std
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
