package domain

import (
	"fmt"
	"math"
)

const (
	recentWindow = 5
	formWindow   = 10
)

// PlayerRecentStats is derived once from a most-recent-first game log and never mutated.
// Last5Makes is always the five-element prefix of Last10Makes.
type PlayerRecentStats struct {
	Last5Makes            []int
	Last10Makes           []int
	Last10Attempts        []int
	Last5Dates            []string
	SeasonAttemptsPerGame float64
	Last10AttemptsPerGame float64
	GamesPlayed           int
}

func NewPlayerRecentStats(entries []GameLogEntry) (*PlayerRecentStats, error) {
	if len(entries) < recentWindow {
		return nil, fmt.Errorf("%w: %d games in log, need %d", ErrInsufficientData, len(entries), recentWindow)
	}

	n := min(len(entries), formWindow)
	makes := make([]int, n)
	attempts := make([]int, n)
	dates := make([]string, 0, recentWindow)
	for i, e := range entries[:n] {
		makes[i] = e.Made
		attempts[i] = e.Attempted
		if i < recentWindow {
			dates = append(dates, e.DateLabel)
		}
	}

	var seasonAttempts int
	for _, e := range entries {
		seasonAttempts += e.Attempted
	}
	var formAttempts int
	for _, a := range attempts {
		formAttempts += a
	}

	return &PlayerRecentStats{
		Last5Makes:            makes[:recentWindow:recentWindow],
		Last10Makes:           makes,
		Last10Attempts:        attempts,
		Last5Dates:            dates,
		SeasonAttemptsPerGame: roundTenth(float64(seasonAttempts) / float64(len(entries))),
		Last10AttemptsPerGame: roundTenth(float64(formAttempts) / float64(n)),
		GamesPlayed:           len(entries),
	}, nil
}

// AttemptsPerGame is the volume figure used for scoring and filtering: the season average.
func (s *PlayerRecentStats) AttemptsPerGame() float64 {
	return s.SeasonAttemptsPerGame
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
