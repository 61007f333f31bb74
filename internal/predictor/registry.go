package predictor

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Mereki/three-point-predictor/internal/constants"
	"github.com/Mereki/three-point-predictor/internal/domain"
)

//go:embed data/elite_defenders.json
var defaultRegistry []byte

// Registry lists the elite perimeter defenders of each team, keyed by team
// abbreviation. Names are matched exactly against injury report display names.
type Registry struct {
	teams map[string]map[string]struct{}
}

// DefaultRegistry returns the registry compiled into the binary.
func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultRegistry)
}

// LoadRegistry reads a registry file. An empty path selects the embedded default.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read defender registry: %w", err)
	}
	return ParseRegistry(raw)
}

func ParseRegistry(raw []byte) (*Registry, error) {
	var entries map[string][]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse defender registry: %w", err)
	}
	return NewRegistry(entries), nil
}

func NewRegistry(entries map[string][]string) *Registry {
	teams := make(map[string]map[string]struct{}, len(entries))
	for team, names := range entries {
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		teams[team] = set
	}
	return &Registry{teams: teams}
}

func (r *Registry) IsEliteDefender(team, name string) bool {
	_, ok := r.teams[team][name]
	return ok
}

// Teams is the number of teams the registry knows about.
func (r *Registry) Teams() int {
	return len(r.teams)
}

// InjuredDefenders returns, in report order, the OUT players that the registry
// lists for team.
func (r *Registry) InjuredDefenders(injuries []domain.InjuryRecord, team string) []string {
	var out []string
	for _, inj := range injuries {
		if inj.Status != constants.InjuryStatusOut {
			continue
		}
		if r.IsEliteDefender(team, inj.PlayerDisplayName) {
			out = append(out, inj.PlayerDisplayName)
		}
	}
	return out
}

// AdjustForInjuries adds a fixed boost per elite defender ruled out. The boost
// stacks without a cap; the result is rounded to one decimal.
func (r *Registry) AdjustForInjuries(prediction float64, injuries []domain.InjuryRecord, opponentAbbrev string) (float64, []string) {
	names := r.InjuredDefenders(injuries, opponentAbbrev)
	adjusted := prediction + float64(len(names))*constants.InjuryPredictBoost
	return roundTenth(adjusted), names
}
