package server

import (
	"time"

	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/Mereki/three-point-predictor/internal/service"
)

type playerResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Team     string `json:"team,omitempty"`
	Position string `json:"position,omitempty"`
}

type defenseResponse struct {
	Guard     float64 `json:"guard"`
	Forward   float64 `json:"forward"`
	Center    float64 `json:"center"`
	Overall   float64 `json:"overall"`
	Source    string  `json:"source"`
	GamesUsed int     `json:"games_used,omitempty"`
}

type recentGameResponse struct {
	Date  string `json:"date"`
	Makes int    `json:"makes"`
}

type predictionResponse struct {
	Player              playerResponse       `json:"player"`
	Opponent            string               `json:"opponent"`
	PositionGroup       string               `json:"position_group"`
	BasePrediction      float64              `json:"base_prediction"`
	Prediction          float64              `json:"prediction"`
	InjuredKeyDefenders []string             `json:"injured_key_defenders"`
	ConfidenceScore     int                  `json:"confidence_score"`
	Tier                string               `json:"tier"`
	Flags               []string             `json:"flags"`
	RecentGames         []recentGameResponse `json:"recent_games"`
	SeasonAttempts      float64              `json:"season_3pa_per_game"`
	Last10Attempts      float64              `json:"last10_3pa_per_game"`
	Defense             defenseResponse      `json:"defense"`
}

type pickResponse struct {
	PlayerID        int     `json:"player_id"`
	Player          string  `json:"player"`
	Matchup         string  `json:"matchup"`
	Prediction      float64 `json:"prediction"`
	ConfidenceScore int     `json:"confidence_score"`
	Tier            string  `json:"tier"`
	RecentAverage   float64 `json:"recent_average"`
	OpponentOverall float64 `json:"opponent_overall"`
}

type scanRunResponse struct {
	ID        string         `json:"id"`
	GameDate  string         `json:"game_date"`
	Season    string         `json:"season"`
	Games     int            `json:"games"`
	Analyzed  int            `json:"analyzed"`
	CreatedAt time.Time      `json:"created_at"`
	Picks     []pickResponse `json:"picks"`
}

type scannedGameResponse struct {
	GameID      string               `json:"game_id"`
	Home        string               `json:"home"`
	Away        string               `json:"away"`
	Status      string               `json:"status"`
	Predictions []predictionResponse `json:"predictions"`
}

type scanResponse struct {
	Run   scanRunResponse       `json:"run"`
	Games []scannedGameResponse `json:"games"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func toPlayer(p domain.Player) playerResponse {
	return playerResponse{ID: p.ID, Name: p.FullName, Team: p.TeamAbbreviation, Position: p.Position}
}

func toPrediction(a domain.Analysis) predictionResponse {
	player := toPlayer(a.Player)
	player.Position = a.Position

	recent := make([]recentGameResponse, 0, len(a.Stats.Last5Makes))
	for i, makes := range a.Stats.Last5Makes {
		g := recentGameResponse{Makes: makes}
		if i < len(a.Stats.Last5Dates) {
			g.Date = a.Stats.Last5Dates[i]
		}
		recent = append(recent, g)
	}

	injured := a.Result.InjuredKeyDefenders
	if injured == nil {
		injured = []string{}
	}
	flags := a.Result.Flags
	if flags == nil {
		flags = []string{}
	}

	return predictionResponse{
		Player:              player,
		Opponent:            a.Opponent.Abbreviation,
		PositionGroup:       string(a.Group),
		BasePrediction:      a.Result.BasePrediction,
		Prediction:          a.Result.AdjustedPrediction,
		InjuredKeyDefenders: injured,
		ConfidenceScore:     a.Result.ConfidenceScore,
		Tier:                string(a.Result.Tier),
		Flags:               flags,
		RecentGames:         recent,
		SeasonAttempts:      a.Stats.SeasonAttemptsPerGame,
		Last10Attempts:      a.Stats.Last10AttemptsPerGame,
		Defense: defenseResponse{
			Guard:     a.Defense.Guard,
			Forward:   a.Defense.Forward,
			Center:    a.Defense.Center,
			Overall:   a.Defense.Overall,
			Source:    string(a.Defense.Source),
			GamesUsed: a.Defense.GamesUsed,
		},
	}
}

func toScanRun(run domain.ScanRun) scanRunResponse {
	picks := make([]pickResponse, 0, len(run.Picks))
	for _, p := range run.Picks {
		picks = append(picks, pickResponse{
			PlayerID:        p.PlayerID,
			Player:          p.PlayerName,
			Matchup:         p.Matchup,
			Prediction:      p.Prediction,
			ConfidenceScore: p.ConfidenceScore,
			Tier:            string(p.Tier),
			RecentAverage:   p.RecentAverage,
			OpponentOverall: p.OpponentOverall,
		})
	}
	return scanRunResponse{
		ID:        run.ID,
		GameDate:  run.GameDate,
		Season:    run.Season,
		Games:     run.Games,
		Analyzed:  run.Analyzed,
		CreatedAt: run.CreatedAt,
		Picks:     picks,
	}
}

// toScan keeps only HIGH and MEDIUM predictions per game.
func toScan(res *service.ScanResult) scanResponse {
	games := make([]scannedGameResponse, 0, len(res.Games))
	for _, g := range res.Games {
		preds := []predictionResponse{}
		for _, a := range g.Analyses {
			if a.Result.Tier == domain.TierLow {
				continue
			}
			preds = append(preds, toPrediction(a))
		}
		games = append(games, scannedGameResponse{
			GameID:      g.GameID,
			Home:        g.Home.Abbreviation,
			Away:        g.Away.Abbreviation,
			Status:      g.Status,
			Predictions: preds,
		})
	}
	return scanResponse{Run: toScanRun(res.Run), Games: games}
}
