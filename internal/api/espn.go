package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mereki/three-point-predictor/internal/config"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/rs/zerolog"
)

type ESPNClient struct {
	http *httpClient
}

func NewESPNClient(cfg *config.Config, logger zerolog.Logger) *ESPNClient {
	headers := map[string]string{"Accept": "application/json"}
	return &ESPNClient{
		http: newHTTPClient("espn", strings.TrimRight(cfg.ESPNBaseURL, "/"), headers, 0, logger),
	}
}

type injuriesResponse struct {
	Injuries []struct {
		Status  string `json:"status"`
		Athlete struct {
			DisplayName string `json:"displayName"`
		} `json:"athlete"`
	} `json:"injuries"`
}

// GetTeamInjuries returns the team's injury report. Display names are passed
// through untouched. Status is trimmed and upper-cased, so any casing of "out"
// reads as OUT downstream. That is deliberately wider than an exact
// comparison on the raw ESPN value, which would never match ESPN's "Out".
// An empty status becomes "UNKNOWN".
func (c *ESPNClient) GetTeamInjuries(ctx context.Context, team domain.Team) ([]domain.InjuryRecord, error) {
	abbr := team.ESPNAbbreviation
	if abbr == "" {
		abbr = team.Abbreviation
	}
	endpoint := fmt.Sprintf("teams/%s/injuries", strings.ToLower(abbr))

	resp, err := doRequest[injuriesResponse](ctx, c.http, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch injuries: %w", err)
	}

	records := make([]domain.InjuryRecord, 0, len(resp.Injuries))
	for _, inj := range resp.Injuries {
		status := strings.ToUpper(strings.TrimSpace(inj.Status))
		if status == "" {
			status = "UNKNOWN"
		}
		name := inj.Athlete.DisplayName
		if name == "" {
			name = "Unknown"
		}
		records = append(records, domain.InjuryRecord{Status: status, PlayerDisplayName: name})
	}
	return records, nil
}
