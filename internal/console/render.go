package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/Mereki/three-point-predictor/internal/service"
	"github.com/dustin/go-humanize"
)

var rule = strings.Repeat("=", 60)

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// RenderAnalysis prints the full breakdown for a single player.
func RenderAnalysis(w io.Writer, a *domain.Analysis) {
	r := a.Result
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%s (%s) vs %s\n", a.Player.FullName, a.Position, a.Opponent.Abbreviation)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Prediction: %.1f threes\n", r.AdjustedPrediction)
	if r.AdjustedPrediction != r.BasePrediction {
		fmt.Fprintf(w, "  (Base: %.1f, Injury boost: +%.1f)\n", r.BasePrediction, r.AdjustedPrediction-r.BasePrediction)
	}
	fmt.Fprintf(w, "Confidence: %s (%d/100)\n", r.Tier, r.ConfidenceScore)

	fmt.Fprintln(w, "\n📊 Key factors:")
	for _, flag := range r.Flags {
		fmt.Fprintf(w, "  %s\n", flag)
	}

	fmt.Fprintln(w, "\n📈 Recent games:")
	for i, makes := range a.Stats.Last5Makes {
		date := ""
		if i < len(a.Stats.Last5Dates) {
			date = a.Stats.Last5Dates[i]
		}
		fmt.Fprintf(w, "  %s: %d threes\n", date, makes)
	}

	fmt.Fprintln(w, "\n📊 3PA Stats:")
	fmt.Fprintf(w, "  Season average: %.1f 3PA/game\n", a.Stats.SeasonAttemptsPerGame)
	fmt.Fprintf(w, "  Last 10 games: %.1f 3PA/game\n", a.Stats.Last10AttemptsPerGame)

	d := a.Defense
	fmt.Fprintf(w, "\n🛡️ %s Defense (%s position splits):\n", a.Opponent.Abbreviation, d.Source)
	fmt.Fprintf(w, "  vs Guards: %s\n", pct(d.Guard))
	fmt.Fprintf(w, "  vs Forwards: %s\n", pct(d.Forward))
	fmt.Fprintf(w, "  vs Centers: %s\n", pct(d.Center))
	fmt.Fprintf(w, "  Overall: %s\n", pct(d.Overall))
}

// RenderScan prints each game's qualifying shooters followed by the top
// HIGH-confidence picks of the slate.
func RenderScan(w io.Writer, res *service.ScanResult, dayLabel string) {
	if len(res.Games) == 0 {
		fmt.Fprintf(w, "No games scheduled for %s.\n", strings.ToLower(dayLabel))
		return
	}

	fmt.Fprintf(w, "\n%s's Games:\n", dayLabel)
	fmt.Fprintln(w, rule)

	for i, g := range res.Games {
		fmt.Fprintf(w, "\n%d. %s @ %s\n", i+1, g.Away.FullName(), g.Home.FullName())
		fmt.Fprintf(w, "   Status: %s\n", g.Status)

		for _, side := range []struct{ team, opponent domain.Team }{{g.Home, g.Away}, {g.Away, g.Home}} {
			fmt.Fprintf(w, "\n   %s shooters:\n", side.team.Abbreviation)
			count := 0
			for _, a := range g.Analyses {
				if a.Opponent.ID != side.opponent.ID || a.Result.Tier == domain.TierLow {
					continue
				}
				fmt.Fprintf(w, "     ✓ %s: %.1f (%s)\n", a.Player.FullName, a.Result.AdjustedPrediction, a.Result.Tier)
				count++
			}
			if count == 0 {
				fmt.Fprintln(w, "     No qualifying shooters found")
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "HIGH CONFIDENCE PICKS FOR %s:\n", strings.ToUpper(dayLabel))
	fmt.Fprintf(w, "%s\n\n", rule)
	RenderPicks(w, res.Run.Picks)
}

func RenderPicks(w io.Writer, picks []domain.Pick) {
	if len(picks) == 0 {
		fmt.Fprint(w, "No high confidence picks found.\n\n")
		return
	}
	for i, p := range picks {
		fmt.Fprintf(w, "%d. %s (%s)\n", i+1, p.PlayerName, p.Matchup)
		fmt.Fprintf(w, "   Prediction: %.1f threes | Confidence: %d/100\n", p.Prediction, p.ConfidenceScore)
		fmt.Fprintf(w, "   Recent avg: %.1f per game\n", p.RecentAverage)
		fmt.Fprintf(w, "   Opponent allows: %s from three\n\n", pct(p.OpponentOverall))
	}
}

func RenderRecentRuns(w io.Writer, runs []domain.ScanRun, now time.Time) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No scans recorded yet.")
		return
	}
	fmt.Fprintln(w, "\nRecent scans:")
	fmt.Fprintln(w, rule)
	for _, run := range runs {
		fmt.Fprintf(w, "\n%s (%s): %s games, %s players analysed, scanned %s\n",
			run.GameDate,
			run.Season,
			humanize.Comma(int64(run.Games)),
			humanize.Comma(int64(run.Analyzed)),
			humanize.RelTime(run.CreatedAt, now, "ago", "from now"))
		for i, p := range run.Picks {
			fmt.Fprintf(w, "  %d. %s (%s) %.1f threes, %d/100\n", i+1, p.PlayerName, p.Matchup, p.Prediction, p.ConfidenceScore)
		}
	}
}
