package api

import (
	"strings"

	"github.com/Mereki/three-point-predictor/internal/domain"
)

// teams is the static league table. ESPN uses its own abbreviations for a
// handful of franchises.
var teams = []domain.Team{
	{ID: 1610612737, Abbreviation: "ATL", ESPNAbbreviation: "ATL", City: "Atlanta", Nickname: "Hawks"},
	{ID: 1610612738, Abbreviation: "BOS", ESPNAbbreviation: "BOS", City: "Boston", Nickname: "Celtics"},
	{ID: 1610612739, Abbreviation: "CLE", ESPNAbbreviation: "CLE", City: "Cleveland", Nickname: "Cavaliers"},
	{ID: 1610612740, Abbreviation: "NOP", ESPNAbbreviation: "NO", City: "New Orleans", Nickname: "Pelicans"},
	{ID: 1610612741, Abbreviation: "CHI", ESPNAbbreviation: "CHI", City: "Chicago", Nickname: "Bulls"},
	{ID: 1610612742, Abbreviation: "DAL", ESPNAbbreviation: "DAL", City: "Dallas", Nickname: "Mavericks"},
	{ID: 1610612743, Abbreviation: "DEN", ESPNAbbreviation: "DEN", City: "Denver", Nickname: "Nuggets"},
	{ID: 1610612744, Abbreviation: "GSW", ESPNAbbreviation: "GS", City: "Golden State", Nickname: "Warriors"},
	{ID: 1610612745, Abbreviation: "HOU", ESPNAbbreviation: "HOU", City: "Houston", Nickname: "Rockets"},
	{ID: 1610612746, Abbreviation: "LAC", ESPNAbbreviation: "LAC", City: "LA", Nickname: "Clippers"},
	{ID: 1610612747, Abbreviation: "LAL", ESPNAbbreviation: "LAL", City: "Los Angeles", Nickname: "Lakers"},
	{ID: 1610612748, Abbreviation: "MIA", ESPNAbbreviation: "MIA", City: "Miami", Nickname: "Heat"},
	{ID: 1610612749, Abbreviation: "MIL", ESPNAbbreviation: "MIL", City: "Milwaukee", Nickname: "Bucks"},
	{ID: 1610612750, Abbreviation: "MIN", ESPNAbbreviation: "MIN", City: "Minnesota", Nickname: "Timberwolves"},
	{ID: 1610612751, Abbreviation: "BKN", ESPNAbbreviation: "BKN", City: "Brooklyn", Nickname: "Nets"},
	{ID: 1610612752, Abbreviation: "NYK", ESPNAbbreviation: "NY", City: "New York", Nickname: "Knicks"},
	{ID: 1610612753, Abbreviation: "ORL", ESPNAbbreviation: "ORL", City: "Orlando", Nickname: "Magic"},
	{ID: 1610612754, Abbreviation: "IND", ESPNAbbreviation: "IND", City: "Indiana", Nickname: "Pacers"},
	{ID: 1610612755, Abbreviation: "PHI", ESPNAbbreviation: "PHI", City: "Philadelphia", Nickname: "76ers"},
	{ID: 1610612756, Abbreviation: "PHX", ESPNAbbreviation: "PHX", City: "Phoenix", Nickname: "Suns"},
	{ID: 1610612757, Abbreviation: "POR", ESPNAbbreviation: "POR", City: "Portland", Nickname: "Trail Blazers"},
	{ID: 1610612758, Abbreviation: "SAC", ESPNAbbreviation: "SAC", City: "Sacramento", Nickname: "Kings"},
	{ID: 1610612759, Abbreviation: "SAS", ESPNAbbreviation: "SA", City: "San Antonio", Nickname: "Spurs"},
	{ID: 1610612760, Abbreviation: "OKC", ESPNAbbreviation: "OKC", City: "Oklahoma City", Nickname: "Thunder"},
	{ID: 1610612761, Abbreviation: "TOR", ESPNAbbreviation: "TOR", City: "Toronto", Nickname: "Raptors"},
	{ID: 1610612762, Abbreviation: "UTA", ESPNAbbreviation: "UTAH", City: "Utah", Nickname: "Jazz"},
	{ID: 1610612763, Abbreviation: "MEM", ESPNAbbreviation: "MEM", City: "Memphis", Nickname: "Grizzlies"},
	{ID: 1610612764, Abbreviation: "WAS", ESPNAbbreviation: "WSH", City: "Washington", Nickname: "Wizards"},
	{ID: 1610612765, Abbreviation: "DET", ESPNAbbreviation: "DET", City: "Detroit", Nickname: "Pistons"},
	{ID: 1610612766, Abbreviation: "CHA", ESPNAbbreviation: "CHA", City: "Charlotte", Nickname: "Hornets"},
}

var (
	teamsByID     = make(map[int]domain.Team, len(teams))
	teamsByAbbrev = make(map[string]domain.Team, len(teams)*2)
)

func init() {
	for _, t := range teams {
		teamsByID[t.ID] = t
		teamsByAbbrev[t.Abbreviation] = t
		teamsByAbbrev[t.ESPNAbbreviation] = t
	}
}

func Teams() []domain.Team {
	out := make([]domain.Team, len(teams))
	copy(out, teams)
	return out
}

// TeamByAbbreviation accepts NBA or ESPN abbreviations in any case.
func TeamByAbbreviation(abbr string) (domain.Team, bool) {
	t, ok := teamsByAbbrev[strings.ToUpper(strings.TrimSpace(abbr))]
	return t, ok
}

func TeamByID(id int) (domain.Team, bool) {
	t, ok := teamsByID[id]
	return t, ok
}
