package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Mereki/three-point-predictor/internal/config"
	"github.com/Mereki/three-point-predictor/internal/service"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type SlateScanner interface {
	ScanDate(ctx context.Context, date time.Time) (*service.ScanResult, error)
}

// WarmupJob scans the current day's slate so defense profiles, positions and
// scan history are cached before anyone asks for them.
type WarmupJob struct {
	scanner SlateScanner
	now     func() time.Time
	logger  zerolog.Logger
}

func NewWarmupJob(scanner SlateScanner, logger zerolog.Logger) *WarmupJob {
	return &WarmupJob{scanner: scanner, now: time.Now, logger: logger}
}

func (j *WarmupJob) Name() string {
	return "slate-warmup"
}

func (j *WarmupJob) Run(ctx context.Context) error {
	date := j.now()
	res, err := j.scanner.ScanDate(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to warm up %s: %w", date.Format(time.DateOnly), err)
	}
	j.logger.Info().
		Str("date", res.Run.GameDate).
		Int("games", res.Run.Games).
		Int("picks", len(res.Run.Picks)).
		Msg("slate warmed up")
	return nil
}

// Register wires the warm-up job into the application lifecycle. An empty
// schedule leaves the scheduler idle.
func Register(lc fx.Lifecycle, s *Scheduler, job *WarmupJob, cfg *config.Config) error {
	if cfg.WarmupSchedule != "" {
		if err := s.AddJob(cfg.WarmupSchedule, job); err != nil {
			return err
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			s.Stop()
			return nil
		},
	})
	return nil
}
