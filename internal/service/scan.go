package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Mereki/three-point-predictor/internal/config"
	"github.com/Mereki/three-point-predictor/internal/constants"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/Mereki/three-point-predictor/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ScannedGame struct {
	GameID   string
	Home     domain.Team
	Away     domain.Team
	Status   string
	Analyses []domain.Analysis
}

// ScanResult holds every analysis of a slate, grouped by game, plus the
// persisted run with its top picks.
type ScanResult struct {
	Date  time.Time
	Run   domain.ScanRun
	Games []ScannedGame
}

type ScanService struct {
	stats       StatsProvider
	analysis    *AnalysisService
	runs        ScanStore
	season      string
	rosterLimit int
	concurrency int
	topPicks    int
	logger      zerolog.Logger
}

func NewScanService(stats StatsProvider, analysis *AnalysisService, runs ScanStore, cfg *config.Config, logger zerolog.Logger) *ScanService {
	return &ScanService{
		stats:       stats,
		analysis:    analysis,
		runs:        runs,
		season:      cfg.Season,
		rosterLimit: cfg.RosterScanLimit,
		concurrency: cfg.ScanConcurrency,
		topPicks:    cfg.TopPicksLimit,
		logger:      logger,
	}
}

type teamSide struct {
	roster   []domain.Player
	opponent *OpponentContext
}

type scanTask struct {
	game   int
	player domain.Player
	vs     domain.Team
}

func (s *ScanService) ScanDate(ctx context.Context, date time.Time) (*ScanResult, error) {
	timer := prometheus.NewTimer(metrics.ScanDuration)
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, constants.ScanTimeout)
	defer cancel()

	log := s.logger.With().Str("date", date.Format(time.DateOnly)).Str("season", s.season).Logger()

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	scheduled, err := s.stats.GetScoreboard(apiCtx, date)
	apiCancel()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard: %w", err)
	}

	result := &ScanResult{
		Date: date,
		Run: domain.ScanRun{
			GameDate:  date.Format(time.DateOnly),
			Season:    s.season,
			CreatedAt: time.Now(),
		},
	}
	for _, g := range scheduled {
		home, ok := teamByID(g.HomeTeamID)
		if !ok {
			log.Warn().Str("game_id", g.GameID).Int("team_id", g.HomeTeamID).Msg("unknown home team, skipping game")
			continue
		}
		away, ok := teamByID(g.VisitorTeamID)
		if !ok {
			log.Warn().Str("game_id", g.GameID).Int("team_id", g.VisitorTeamID).Msg("unknown visiting team, skipping game")
			continue
		}
		result.Games = append(result.Games, ScannedGame{GameID: g.GameID, Home: home, Away: away, Status: g.Status})
	}
	if len(result.Games) == 0 {
		log.Info().Msg("no upcoming games")
		return result, nil
	}
	log.Info().Int("games", len(result.Games)).Msg("scanning slate")

	sides, err := s.prepareSides(ctx, result.Games, log)
	if err != nil {
		return nil, err
	}

	var tasks []scanTask
	for i, g := range result.Games {
		for _, p := range sides[g.Home.ID].roster {
			tasks = append(tasks, scanTask{game: i, player: p, vs: g.Away})
		}
		for _, p := range sides[g.Away.ID].roster {
			tasks = append(tasks, scanTask{game: i, player: p, vs: g.Home})
		}
	}

	analyses := make([]*domain.Analysis, len(tasks))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, task := range tasks {
		g.Go(func() error {
			a, err := s.analysis.AnalyzeAgainst(gCtx, task.player, sides[task.vs.ID].opponent)
			if err != nil {
				if ctxErr := gCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				if !errors.Is(err, ErrSkipped) {
					log.Warn().Err(err).Int("player_id", task.player.ID).Msg("failed to analyze player")
				}
				return nil
			}
			analyses[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan interrupted: %w", err)
	}

	var high []domain.Analysis
	for i, a := range analyses {
		if a == nil {
			continue
		}
		game := &result.Games[tasks[i].game]
		game.Analyses = append(game.Analyses, *a)
		result.Run.Analyzed++
		if a.Result.Tier == domain.TierHigh {
			high = append(high, *a)
		}
	}
	result.Run.Games = len(result.Games)
	result.Run.Picks = s.topPicksFrom(high)

	if err := s.runs.Save(ctx, &result.Run); err != nil {
		log.Warn().Err(err).Msg("failed to save scan run")
	}

	log.Info().
		Int("analyzed", result.Run.Analyzed).
		Int("picks", len(result.Run.Picks)).
		Msg("scan completed")
	return result, nil
}

// prepareSides loads each team's roster and its opponent context once, no
// matter how many games the team appears in.
func (s *ScanService) prepareSides(ctx context.Context, games []ScannedGame, log zerolog.Logger) (map[int]*teamSide, error) {
	sides := make(map[int]*teamSide)
	var teams []domain.Team
	for _, g := range games {
		for _, t := range []domain.Team{g.Home, g.Away} {
			if _, ok := sides[t.ID]; !ok {
				sides[t.ID] = &teamSide{}
				teams = append(teams, t)
			}
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, team := range teams {
		g.Go(func() error {
			apiCtx, cancel := context.WithTimeout(gCtx, constants.ExternalAPITimeout)
			roster, err := s.stats.GetTeamRoster(apiCtx, team.ID, s.season)
			cancel()
			if err != nil {
				if ctxErr := gCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn().Err(err).Str("team", team.Abbreviation).Msg("failed to fetch roster")
			}
			if len(roster) > s.rosterLimit {
				roster = roster[:s.rosterLimit]
			}

			oc, err := s.analysis.OpponentContext(gCtx, team)
			if err != nil {
				return err
			}

			side := sides[team.ID]
			side.roster = roster
			side.opponent = oc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to prepare teams: %w", err)
	}
	return sides, nil
}

func (s *ScanService) topPicksFrom(high []domain.Analysis) []domain.Pick {
	slices.SortStableFunc(high, func(a, b domain.Analysis) int {
		return b.Result.ConfidenceScore - a.Result.ConfidenceScore
	})
	if len(high) > s.topPicks {
		high = high[:s.topPicks]
	}

	picks := make([]domain.Pick, 0, len(high))
	for _, a := range high {
		picks = append(picks, domain.Pick{
			PlayerID:        a.Player.ID,
			PlayerName:      a.Player.FullName,
			Matchup:         fmt.Sprintf("%s vs %s", a.Player.TeamAbbreviation, a.Opponent.Abbreviation),
			Prediction:      a.Result.AdjustedPrediction,
			ConfidenceScore: a.Result.ConfidenceScore,
			Tier:            a.Result.Tier,
			RecentAverage:   RecentAverage(a.Stats),
			OpponentOverall: a.Defense.Overall,
		})
	}
	return picks
}

// RecentAverage is the plain mean of the last five games' makes.
func RecentAverage(stats domain.PlayerRecentStats) float64 {
	var sum int
	for _, m := range stats.Last5Makes {
		sum += m
	}
	return float64(sum) / float64(len(stats.Last5Makes))
}

func (s *ScanService) RecentRuns(ctx context.Context, limit int) ([]domain.ScanRun, error) {
	if limit <= 0 {
		limit = constants.RecentRunsLimit
	}

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	runs, err := s.runs.Recent(dbCtx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan runs: %w", err)
	}
	return runs, nil
}
