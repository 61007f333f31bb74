package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/Mereki/three-point-predictor/internal/console"
	fxmodules "github.com/Mereki/three-point-predictor/internal/fx"
	"github.com/Mereki/three-point-predictor/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fx.NopLogger,
		fxmodules.CLIModule,
		fx.Provide(newConsole),
		fx.Invoke(runConsole),
	).Run()
}

func newConsole(
	players *service.PlayerService,
	teams *service.TeamService,
	analysis *service.AnalysisService,
	scans *service.ScanService,
	logger zerolog.Logger,
) *console.Console {
	return console.New(os.Stdin, os.Stdout, players, teams, analysis, scans, logger)
}

// runConsole drives the menu in the background and stops the app when the
// user quits.
func runConsole(lc fx.Lifecycle, shutdowner fx.Shutdowner, c *console.Console, db *sql.DB, logger zerolog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				code := 0
				if err := c.Run(ctx); err != nil && ctx.Err() == nil {
					logger.Error().Err(err).Msg("console stopped")
					code = 1
				}
				_ = shutdowner.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return db.Close()
		},
	})
}
