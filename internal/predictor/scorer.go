package predictor

import (
	"fmt"
	"strings"

	"github.com/Mereki/three-point-predictor/internal/constants"
	"github.com/Mereki/three-point-predictor/internal/domain"
)

// Score sums five capped terms (recent form, matchup, volume, consistency and
// injured elite defenders), truncates the sum and clamps it to 100. Flags
// explain the terms in the order they were evaluated.
func (r *Registry) Score(stats *domain.PlayerRecentStats, defense domain.DefenseProfile, group domain.PositionGroup, injuries []domain.InjuryRecord, opponentAbbrev string) (int, []string) {
	var score float64
	var flags []string

	recent := mean(stats.Last5Makes)
	score += min(recent/constants.RecentMakesCeiling*constants.RecentWeight, constants.RecentWeight)
	if recent >= constants.RecentFlagMakes {
		flags = append(flags, fmt.Sprintf("✓ Averaging %.1f 3PM last 5 games", recent))
	}

	allowed := defense.AllowedFor(group)
	if allowed > domain.LeagueBaseline {
		bonus := (allowed - domain.LeagueBaseline) / domain.LeagueBaseline * constants.MatchupWeight
		score += min(bonus, constants.MatchupWeight)
		flags = append(flags, fmt.Sprintf("✓ Opponent allows %.1f%% to %ss (league avg: %.1f%%)",
			allowed*100, group, domain.LeagueBaseline*100))
	} else {
		flags = append(flags, fmt.Sprintf("⚠ Tough matchup: Opponent allows %.1f%% to %ss", allowed*100, group))
	}

	attempts := stats.AttemptsPerGame()
	switch {
	case attempts >= constants.HighVolumeAttempts:
		score += constants.HighVolumePoints
		flags = append(flags, fmt.Sprintf("High volume shooter (%.1f 3PA/game)", attempts))
	case attempts >= constants.ModerateVolumeAttempts:
		score += constants.ModerateVolumePoints
		flags = append(flags, fmt.Sprintf("Moderate volume (%.1f 3PA/game)", attempts))
	case attempts >= constants.LowVolumeAttempts:
		score += constants.LowVolumePoints
	default:
		flags = append(flags, fmt.Sprintf("Low volume shooter (%.1f 3PA/game)", attempts))
	}

	std := popStdDev(stats.Last10Makes)
	switch {
	case std < constants.ConsistentStdDev:
		score += constants.ConsistentPoints
		flags = append(flags, fmt.Sprintf("Consistent shooter (stdev: %.1f)", std))
	case std < constants.SteadyStdDev:
		score += constants.SteadyPoints
	default:
		flags = append(flags, fmt.Sprintf("Inconsistent (stdev: %.1f)", std))
	}

	injured := r.InjuredDefenders(injuries, opponentAbbrev)
	score += float64(len(injured)) * constants.InjuryScorePoints
	if len(injured) > 0 {
		flags = append(flags, "Key defender(s) OUT: "+strings.Join(injured, ", "))
	}

	return min(int(score), constants.MaxConfidence), flags
}

func TierFor(score int) domain.Tier {
	switch {
	case score >= constants.HighTierMin:
		return domain.TierHigh
	case score >= constants.MediumTierMin:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}
