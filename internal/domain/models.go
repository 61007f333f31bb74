package domain

import (
	"errors"
	"time"
)

// LeagueBaseline is the league-average three-point percentage every adjustment is measured against.
const LeagueBaseline = 0.365

var ErrInsufficientData = errors.New("insufficient data")

type PositionGroup string

const (
	Guard   PositionGroup = "guard"
	Forward PositionGroup = "forward"
	Center  PositionGroup = "center"
)

var PositionGroups = []PositionGroup{Guard, Forward, Center}

type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

type ProfileSource string

const (
	SourceEstimated  ProfileSource = "estimated"
	SourceAggregated ProfileSource = "aggregated"
	SourceBaseline   ProfileSource = "baseline"
)

type Team struct {
	ID               int
	Abbreviation     string
	ESPNAbbreviation string
	City             string
	Nickname         string
}

func (t Team) FullName() string {
	return t.City + " " + t.Nickname
}

type Player struct {
	ID               int
	FullName         string
	TeamID           int
	TeamAbbreviation string
	Position         string
}

type GameLogEntry struct {
	GameID    string
	Date      time.Time
	DateLabel string
	Matchup   string
	Made      int
	Attempted int
}

type ScheduledGame struct {
	GameID        string
	HomeTeamID    int
	VisitorTeamID int
	Status        string
}

type TeamGame struct {
	GameID  string
	Outcome string // "W", "L" or empty for unplayed games
}

func (g TeamGame) Completed() bool {
	return g.Outcome == "W" || g.Outcome == "L"
}

type BoxScoreLine struct {
	PlayerID  int
	TeamID    int
	Made      int
	Attempted int
}

type BoxScore struct {
	GameID  string
	TeamIDs []int
	Lines   []BoxScoreLine
}

// HasPlayerStats is false for games that have not been played yet.
func (b *BoxScore) HasPlayerStats() bool {
	return b != nil && len(b.Lines) > 0
}

func (b *BoxScore) OpponentOf(teamID int) (int, bool) {
	for _, id := range b.TeamIDs {
		if id != teamID {
			return id, true
		}
	}
	return 0, false
}

type DefenseProfile struct {
	Guard     float64
	Forward   float64
	Center    float64
	Overall   float64
	Source    ProfileSource
	GamesUsed int
}

func BaselineProfile() DefenseProfile {
	return DefenseProfile{
		Guard:   LeagueBaseline,
		Forward: LeagueBaseline,
		Center:  LeagueBaseline,
		Overall: LeagueBaseline,
		Source:  SourceBaseline,
	}
}

// AllowedFor falls back to the overall figure for groups the profile does not know.
func (d DefenseProfile) AllowedFor(group PositionGroup) float64 {
	switch group {
	case Guard:
		return d.Guard
	case Forward:
		return d.Forward
	case Center:
		return d.Center
	default:
		return d.Overall
	}
}

type InjuryRecord struct {
	Status            string
	PlayerDisplayName string
}

type PredictionResult struct {
	BasePrediction      float64
	AdjustedPrediction  float64
	InjuredKeyDefenders []string
	ConfidenceScore     int
	Tier                Tier
	Flags               []string
}

// Analysis is one analysed (player, opponent) pair with everything the presentation layer renders.
type Analysis struct {
	Player   Player
	Opponent Team
	Position string
	Group    PositionGroup
	Stats    PlayerRecentStats
	Defense  DefenseProfile
	Result   PredictionResult
}

type ScanRun struct {
	ID        string
	GameDate  string
	Season    string
	Games     int
	Analyzed  int
	CreatedAt time.Time
	Picks     []Pick
}

type Pick struct {
	ID              string
	RunID           string
	PlayerID        int
	PlayerName      string
	Matchup         string
	Prediction      float64
	ConfidenceScore int
	Tier            Tier
	RecentAverage   float64
	OpponentOverall float64
}
