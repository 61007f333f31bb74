package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Mereki/three-point-predictor/internal/constants"
	"github.com/Mereki/three-point-predictor/internal/middleware"
	"github.com/Mereki/three-point-predictor/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var errBadRequest = errors.New("bad request")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("database ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /v1/players?q=curry&limit=5
func (s *Server) handleSearchPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		s.writeError(w, r, errBadRequest, "query parameter q is required")
		return
	}
	limit, err := intParam(r, "limit", constants.SearchResultLimit)
	if err != nil {
		s.writeError(w, r, err, "limit must be a positive integer")
		return
	}

	players, err := s.players.Search(r.Context(), q, limit)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	resp := make([]playerResponse, 0, len(players))
	for _, p := range players {
		resp = append(resp, toPlayer(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /v1/predictions?player=stephen+curry&opponent=LAL
func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("player")
	abbr := r.URL.Query().Get("opponent")
	if strings.TrimSpace(name) == "" || strings.TrimSpace(abbr) == "" {
		s.writeError(w, r, errBadRequest, "query parameters player and opponent are required")
		return
	}

	opponent, err := s.teams.ByAbbreviation(strings.TrimSpace(abbr))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	player, err := s.players.FindByName(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	analysis, err := s.analysis.Analyze(r.Context(), *player, opponent)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, toPrediction(*analysis))
}

// GET /v1/scans?date=2025-11-05
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
		if err != nil {
			s.writeError(w, r, errBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	res, err := s.scans.ScanDate(r.Context(), date)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, toScan(res))
}

// GET /v1/scans/recent?limit=5
func (s *Server) handleRecentScans(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", constants.RecentRunsLimit)
	if err != nil {
		s.writeError(w, r, err, "limit must be a positive integer")
		return
	}

	runs, err := s.scans.RecentRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	resp := make([]scanRunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toScanRun(run))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DELETE /v1/defense/{team}
func (s *Server) handleInvalidateDefense(w http.ResponseWriter, r *http.Request) {
	team, err := s.teams.ByAbbreviation(chi.URLParam(r, "team"))
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}

	invalidated, err := s.analysis.InvalidateDefense(r.Context(), team)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"team": team.Abbreviation, "invalidated": invalidated})
}

func intParam(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errBadRequest
	}
	return v, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPlayerNotFound), errors.Is(err, service.ErrTeamNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSkipped):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides internal failures behind a generic message; client errors
// are echoed back.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFor(err)
	if msg == "" {
		msg = err.Error()
	}
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg, RequestID: middleware.GetRequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
