package defense

import "github.com/Mereki/three-point-predictor/internal/domain"

type bucket struct {
	made      int
	attempted int
}

func (b bucket) pct() float64 {
	if b.attempted == 0 {
		return domain.LeagueBaseline
	}
	return float64(b.made) / float64(b.attempted)
}

type tally map[domain.PositionGroup]*bucket

func newTally() tally {
	t := make(tally, len(domain.PositionGroups))
	for _, g := range domain.PositionGroups {
		t[g] = &bucket{}
	}
	return t
}

func (t tally) add(group domain.PositionGroup, made, attempted int) {
	b, ok := t[group]
	if !ok {
		return
	}
	b.made += made
	b.attempted += attempted
}

func (t tally) total() bucket {
	var sum bucket
	for _, b := range t {
		sum.made += b.made
		sum.attempted += b.attempted
	}
	return sum
}

// AggregateBoxScores attributes the threes made and attempted against teamID
// in each box score to the shooter's position group. Games without player rows
// or without an identifiable opponent are skipped. It returns the profile and
// the number of games that contributed; with no usable games the profile is
// the league baseline.
func AggregateBoxScores(teamID int, boxes []*domain.BoxScore, groupOf func(playerID int) domain.PositionGroup) (domain.DefenseProfile, int) {
	t := newTally()
	used := 0

	for _, box := range boxes {
		if !box.HasPlayerStats() {
			continue
		}
		opponentID, ok := box.OpponentOf(teamID)
		if !ok {
			continue
		}
		for _, line := range box.Lines {
			if line.TeamID != opponentID || line.Attempted == 0 {
				continue
			}
			t.add(groupOf(line.PlayerID), line.Made, line.Attempted)
		}
		used++
	}

	if used == 0 {
		return domain.BaselineProfile(), 0
	}

	return domain.DefenseProfile{
		Guard:     t[domain.Guard].pct(),
		Forward:   t[domain.Forward].pct(),
		Center:    t[domain.Center].pct(),
		Overall:   t.total().pct(),
		Source:    domain.SourceAggregated,
		GamesUsed: used,
	}, used
}
