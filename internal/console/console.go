// Package console implements the interactive menu of the command line client.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Mereki/three-point-predictor/internal/constants"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/Mereki/three-point-predictor/internal/service"
	"github.com/rs/zerolog"
)

type PlayerFinder interface {
	FindByName(ctx context.Context, name string) (*domain.Player, error)
}

type TeamFinder interface {
	ByAbbreviation(abbr string) (domain.Team, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, player domain.Player, opponent domain.Team) (*domain.Analysis, error)
}

type SlateScanner interface {
	ScanDate(ctx context.Context, date time.Time) (*service.ScanResult, error)
	RecentRuns(ctx context.Context, limit int) ([]domain.ScanRun, error)
}

type Console struct {
	in       *bufio.Scanner
	out      io.Writer
	players  PlayerFinder
	teams    TeamFinder
	analysis Analyzer
	scans    SlateScanner
	now      func() time.Time
	logger   zerolog.Logger
}

func New(in io.Reader, out io.Writer, players PlayerFinder, teams TeamFinder, analysis Analyzer, scans SlateScanner, logger zerolog.Logger) *Console {
	return &Console{
		in:       bufio.NewScanner(in),
		out:      out,
		players:  players,
		teams:    teams,
		analysis: analysis,
		scans:    scans,
		now:      time.Now,
		logger:   logger,
	}
}

// Run shows the menu until the user quits, the input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprint(c.out, "=== NBA 3PT Prediction Console ===\n\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(c.out, "\nOptions:")
		fmt.Fprintln(c.out, "  1. Today's games")
		fmt.Fprintln(c.out, "  2. Tomorrow's games")
		fmt.Fprintln(c.out, "  3. Search specific player")
		fmt.Fprintln(c.out, "  4. Recent scans")
		fmt.Fprintln(c.out, "  5. Quit")

		choice, ok := c.prompt("\nSelect option (1-5): ")
		if !ok {
			return c.in.Err()
		}

		switch choice {
		case "1":
			c.scan(ctx, 0, "Today")
		case "2":
			c.scan(ctx, 1, "Tomorrow")
		case "3":
			if !c.search(ctx) {
				return c.in.Err()
			}
		case "4":
			c.recent(ctx)
		case "5":
			return nil
		default:
			fmt.Fprintln(c.out, "Invalid option.")
		}
	}
}

func (c *Console) prompt(label string) (string, bool) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

// search returns false when the input ended mid-dialogue.
func (c *Console) search(ctx context.Context) bool {
	name, ok := c.prompt("Enter player name: ")
	if !ok {
		return false
	}
	player, err := c.players.FindByName(ctx, name)
	if err != nil {
		c.logger.Debug().Err(err).Str("name", name).Msg("player lookup failed")
		fmt.Fprintf(c.out, "Could not find player: %s\n", name)
		return true
	}
	fmt.Fprintf(c.out, "\nFound: %s\n", player.FullName)

	abbr, ok := c.prompt("Enter opponent team abbreviation (e.g., LAL, GSW): ")
	if !ok {
		return false
	}
	abbr = strings.ToUpper(abbr)
	opponent, err := c.teams.ByAbbreviation(abbr)
	if err != nil {
		fmt.Fprintf(c.out, "Could not find team: %s\n", abbr)
		return true
	}

	fmt.Fprintf(c.out, "\nAnalyzing %s vs %s...\n\n", player.FullName, opponent.Abbreviation)
	analysis, err := c.analysis.Analyze(ctx, *player, opponent)
	switch {
	case errors.Is(err, service.ErrSkipped):
		fmt.Fprintf(c.out, "Could not generate prediction for this player (%v).\n", err)
	case err != nil:
		c.logger.Error().Err(err).Int("player_id", player.ID).Msg("analysis failed")
		fmt.Fprintln(c.out, "Could not generate prediction for this player.")
	default:
		RenderAnalysis(c.out, analysis)
	}
	return true
}

func (c *Console) scan(ctx context.Context, daysAhead int, label string) {
	fmt.Fprintf(c.out, "\nFetching %s's games...\n", strings.ToLower(label))

	res, err := c.scans.ScanDate(ctx, c.now().AddDate(0, 0, daysAhead))
	if err != nil {
		c.logger.Error().Err(err).Msg("scan failed")
		fmt.Fprintf(c.out, "Could not fetch %s's games.\n", strings.ToLower(label))
		return
	}
	RenderScan(c.out, res, label)
}

func (c *Console) recent(ctx context.Context) {
	runs, err := c.scans.RecentRuns(ctx, constants.RecentRunsLimit)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to list scans")
		fmt.Fprintln(c.out, "Could not load recent scans.")
		return
	}
	RenderRecentRuns(c.out, runs, c.now())
}
