package logger

import (
	"os"

	"github.com/Mereki/three-point-predictor/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New writes JSON lines to stdout, for the server.
func New(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger.Level(parseLevel(cfg.LogLevel))
}

// NewConsole writes human-readable lines to stderr so they stay out of the
// interactive output on stdout.
func NewConsole(cfg *config.Config) zerolog.Logger {
	fd := os.Stderr.Fd()
	w := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
		NoColor:    !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd),
	}
	logger := zerolog.New(w).
		With().
		Timestamp().
		Logger()

	return logger.Level(parseLevel(cfg.LogLevel))
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

var Module = fx.Provide(New)

var ConsoleModule = fx.Provide(NewConsole)
