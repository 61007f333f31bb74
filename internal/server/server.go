package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Mereki/three-point-predictor/internal/config"
	"github.com/Mereki/three-point-predictor/internal/domain"
	"github.com/Mereki/three-point-predictor/internal/middleware"
	"github.com/Mereki/three-point-predictor/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type PlayerFinder interface {
	FindByName(ctx context.Context, name string) (*domain.Player, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Player, error)
}

type TeamFinder interface {
	ByAbbreviation(abbr string) (domain.Team, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, player domain.Player, opponent domain.Team) (*domain.Analysis, error)
	InvalidateDefense(ctx context.Context, team domain.Team) (bool, error)
}

type SlateScanner interface {
	ScanDate(ctx context.Context, date time.Time) (*service.ScanResult, error)
	RecentRuns(ctx context.Context, limit int) ([]domain.ScanRun, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	players  PlayerFinder
	teams    TeamFinder
	analysis Analyzer
	scans    SlateScanner
	db       Pinger
	router   chi.Router
	http     *http.Server
	logger   zerolog.Logger
}

func New(
	players PlayerFinder,
	teams TeamFinder,
	analysis Analyzer,
	scans SlateScanner,
	db Pinger,
	cfg *config.Config,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		players:  players,
		teams:    teams,
		analysis: analysis,
		scans:    scans,
		db:       db,
		logger:   logger,
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID(s.logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}).Handler)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/players", s.handleSearchPlayers)
		r.Get("/predictions", s.handlePrediction)
		r.Route("/scans", func(r chi.Router) {
			r.Get("/", s.handleScan)
			r.Get("/recent", s.handleRecentScans)
		})
		r.Delete("/defense/{team}", s.handleInvalidateDefense)
	})
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Addr() string {
	return s.http.Addr
}

func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
