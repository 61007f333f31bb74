package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Mereki/three-point-predictor/internal/config"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/rs/zerolog"
)

const (
	seasonTypeRegular = "Regular Season"
	gameDateLayout    = "Jan 02, 2006"
	gameDateLabel     = "1/2/2006"
)

// stats.nba.com rejects requests that do not look like they come from nba.com.
var nbaStatsHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Referer":            "https://www.nba.com/",
	"Origin":             "https://www.nba.com",
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"x-nba-stats-origin": "stats",
	"x-nba-stats-token":  "true",
}

type NBAStatsClient struct {
	http *httpClient
}

func NewNBAStatsClient(cfg *config.Config, logger zerolog.Logger) *NBAStatsClient {
	return &NBAStatsClient{
		http: newHTTPClient("nba_stats", strings.TrimRight(cfg.NBAStatsBaseURL, "/"), nbaStatsHeaders, cfg.NBARequestInterval, logger),
	}
}

// GetPlayerGameLog returns the player's regular-season games, most recent first.
func (c *NBAStatsClient) GetPlayerGameLog(ctx context.Context, playerID int, season string) ([]domain.GameLogEntry, error) {
	resp, err := doRequest[statsResponse](ctx, c.http, "playergamelog", map[string]string{
		"PlayerID":   strconv.Itoa(playerID),
		"Season":     season,
		"SeasonType": seasonTypeRegular,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player game log: %w", err)
	}

	rs, err := resp.table("")
	if err != nil {
		return nil, err
	}
	gameIdx, err := rs.column("Game_ID", "GAME_ID")
	if err != nil {
		return nil, err
	}
	idx, err := rs.columns("GAME_DATE", "MATCHUP", "FG3M", "FG3A")
	if err != nil {
		return nil, err
	}

	entries := make([]domain.GameLogEntry, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		raw := cellString(row, idx["GAME_DATE"])
		entry := domain.GameLogEntry{
			GameID:    cellString(row, gameIdx),
			DateLabel: raw,
			Matchup:   cellString(row, idx["MATCHUP"]),
			Made:      cellInt(row, idx["FG3M"]),
			Attempted: cellInt(row, idx["FG3A"]),
		}
		if d, err := time.Parse(gameDateLayout, raw); err == nil {
			entry.Date = d
			entry.DateLabel = d.Format(gameDateLabel)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetPlayerPosition returns the raw position label, which may be empty.
func (c *NBAStatsClient) GetPlayerPosition(ctx context.Context, playerID int) (string, error) {
	resp, err := doRequest[statsResponse](ctx, c.http, "commonplayerinfo", map[string]string{
		"PlayerID": strconv.Itoa(playerID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch player info: %w", err)
	}

	rs, err := resp.table("CommonPlayerInfo")
	if err != nil {
		if rs, err = resp.table(""); err != nil {
			return "", err
		}
	}
	posIdx, err := rs.column("POSITION")
	if err != nil {
		return "", err
	}
	if len(rs.RowSet) == 0 {
		return "", fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}
	return cellString(rs.RowSet[0], posIdx), nil
}

// GetOpponentThreePointPct returns the three-point percentage the team's
// opponents shoot. ok is false when the dashboard has no figure.
func (c *NBAStatsClient) GetOpponentThreePointPct(ctx context.Context, teamID int, season string) (float64, bool, error) {
	resp, err := doRequest[statsResponse](ctx, c.http, "teamdashboardbygeneralsplits", map[string]string{
		"TeamID":         strconv.Itoa(teamID),
		"Season":         season,
		"SeasonType":     seasonTypeRegular,
		"MeasureType":    "Opponent",
		"PerMode":        "PerGame",
		"PlusMinus":      "N",
		"PaceAdjust":     "N",
		"Rank":           "N",
		"LastNGames":     "0",
		"Month":          "0",
		"OpponentTeamID": "0",
		"Period":         "0",
		"DateFrom":       "",
		"DateTo":         "",
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to fetch team defense: %w", err)
	}

	rs, err := resp.table("OverallTeamDashboard")
	if err != nil {
		return 0, false, nil
	}
	pctIdx, err := rs.column("OPP_FG3_PCT", "FG3_PCT")
	if err != nil || len(rs.RowSet) == 0 {
		return 0, false, nil
	}
	pct, ok := cellFloat(rs.RowSet[0], pctIdx)
	if !ok || pct == 0 {
		return 0, false, nil
	}
	return pct, true, nil
}

// GetTeamRoster returns the roster in the provider's order.
func (c *NBAStatsClient) GetTeamRoster(ctx context.Context, teamID int, season string) ([]domain.Player, error) {
	resp, err := doRequest[statsResponse](ctx, c.http, "commonteamroster", map[string]string{
		"TeamID":   strconv.Itoa(teamID),
		"Season":   season,
		"LeagueID": "00",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team roster: %w", err)
	}

	rs, err := resp.table("CommonTeamRoster")
	if err != nil {
		if rs, err = resp.table(""); err != nil {
			return nil, err
		}
	}
	idx, err := rs.columns("PLAYER_ID", "PLAYER")
	if err != nil {
		return nil, err
	}
	posIdx, _ := rs.column("POSITION")

	abbrev := ""
	if t, ok := TeamByID(teamID); ok {
		abbrev = t.Abbreviation
	}

	players := make([]domain.Player, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		players = append(players, domain.Player{
			ID:               cellInt(row, idx["PLAYER_ID"]),
			FullName:         cellString(row, idx["PLAYER"]),
			TeamID:           teamID,
			TeamAbbreviation: abbrev,
			Position:         cellString(row, posIdx),
		})
	}
	return players, nil
}

// GetAllPlayers lists the players on a roster this season.
func (c *NBAStatsClient) GetAllPlayers(ctx context.Context, season string) ([]domain.Player, error) {
	resp, err := doRequest[statsResponse](ctx, c.http, "commonallplayers", map[string]string{
		"LeagueID":            "00",
		"Season":              season,
		"IsOnlyCurrentSeason": "1",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch league players: %w", err)
	}

	rs, err := resp.table("CommonAllPlayers")
	if err != nil {
		if rs, err = resp.table(""); err != nil {
			return nil, err
		}
	}
	idx, err := rs.columns("PERSON_ID", "DISPLAY_FIRST_LAST", "TEAM_ID", "TEAM_ABBREVIATION")
	if err != nil {
		return nil, err
	}

	players := make([]domain.Player, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		players = append(players, domain.Player{
			ID:               cellInt(row, idx["PERSON_ID"]),
			FullName:         cellString(row, idx["DISPLAY_FIRST_LAST"]),
			TeamID:           cellInt(row, idx["TEAM_ID"]),
			TeamAbbreviation: cellString(row, idx["TEAM_ABBREVIATION"]),
		})
	}
	return players, nil
}

// GetScoreboard returns the day's games that have not finished.
func (c *NBAStatsClient) GetScoreboard(ctx context.Context, date time.Time) ([]domain.ScheduledGame, error) {
	resp, err := doRequest[statsResponse](ctx, c.http, "scoreboardv2", map[string]string{
		"GameDate":  date.Format(time.DateOnly),
		"LeagueID":  "00",
		"DayOffset": "0",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard: %w", err)
	}

	rs, err := resp.table("GameHeader")
	if err != nil {
		if rs, err = resp.table(""); err != nil {
			return nil, err
		}
	}
	idx, err := rs.columns("GAME_ID", "HOME_TEAM_ID", "VISITOR_TEAM_ID", "GAME_STATUS_TEXT")
	if err != nil {
		return nil, err
	}

	var games []domain.ScheduledGame
	for _, row := range rs.RowSet {
		status := cellString(row, idx["GAME_STATUS_TEXT"])
		if strings.Contains(status, "Final") {
			continue
		}
		games = append(games, domain.ScheduledGame{
			GameID:        cellString(row, idx["GAME_ID"]),
			HomeTeamID:    cellInt(row, idx["HOME_TEAM_ID"]),
			VisitorTeamID: cellInt(row, idx["VISITOR_TEAM_ID"]),
			Status:        strings.TrimSpace(status),
		})
	}
	return games, nil
}

func (c *NBAStatsClient) GetTeamGameLog(ctx context.Context, teamID int, season string) ([]domain.TeamGame, error) {
	resp, err := doRequest[statsResponse](ctx, c.http, "teamgamelog", map[string]string{
		"TeamID":     strconv.Itoa(teamID),
		"Season":     season,
		"SeasonType": seasonTypeRegular,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team game log: %w", err)
	}

	rs, err := resp.table("")
	if err != nil {
		return nil, err
	}
	gameIdx, err := rs.column("Game_ID", "GAME_ID")
	if err != nil {
		return nil, err
	}
	wlIdx, err := rs.column("WL")
	if err != nil {
		return nil, err
	}

	games := make([]domain.TeamGame, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		games = append(games, domain.TeamGame{
			GameID:  cellString(row, gameIdx),
			Outcome: cellString(row, wlIdx),
		})
	}
	return games, nil
}

// GetBoxScore returns per-player three-point lines. A game that has not been
// played yet comes back with no lines.
func (c *NBAStatsClient) GetBoxScore(ctx context.Context, gameID string) (*domain.BoxScore, error) {
	resp, err := doRequest[statsResponse](ctx, c.http, "boxscoretraditionalv2", map[string]string{
		"GameID":      gameID,
		"StartPeriod": "0",
		"EndPeriod":   "10",
		"StartRange":  "0",
		"EndRange":    "28800",
		"RangeType":   "0",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch box score: %w", err)
	}

	box := &domain.BoxScore{GameID: gameID}

	players, err := resp.table("PlayerStats")
	if err != nil {
		return box, nil
	}
	idx, err := players.columns("PLAYER_ID", "TEAM_ID", "FG3M", "FG3A")
	if err != nil {
		return nil, err
	}
	for _, row := range players.RowSet {
		box.Lines = append(box.Lines, domain.BoxScoreLine{
			PlayerID:  cellInt(row, idx["PLAYER_ID"]),
			TeamID:    cellInt(row, idx["TEAM_ID"]),
			Made:      cellInt(row, idx["FG3M"]),
			Attempted: cellInt(row, idx["FG3A"]),
		})
	}

	for _, name := range []string{"TeamStats", "LineScore"} {
		rs, err := resp.table(name)
		if err != nil {
			continue
		}
		teamIdx, err := rs.column("TEAM_ID")
		if err != nil {
			continue
		}
		for _, row := range rs.RowSet {
			box.TeamIDs = appendUnique(box.TeamIDs, cellInt(row, teamIdx))
		}
		if len(box.TeamIDs) > 0 {
			return box, nil
		}
	}

	for _, line := range box.Lines {
		box.TeamIDs = appendUnique(box.TeamIDs, line.TeamID)
	}
	return box, nil
}

func appendUnique(ids []int, id int) []int {
	if id == 0 {
		return ids
	}
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
