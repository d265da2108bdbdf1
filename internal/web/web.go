// Package web exposes the analysis pipeline over a small HTTP API. It is
// presentation glue only; all logic lives in the pipeline packages.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"mindsync/internal/analyze"
	"mindsync/internal/config"
	"mindsync/internal/ics"
	appLog "mindsync/internal/log"
	"mindsync/internal/model"
	"mindsync/internal/normalize"
)

// maxAnalyzeBody bounds uploaded calendar payloads.
const maxAnalyzeBody = 4 << 20

// eventsCacheTTL is how long fetched+expanded ICS events are served from
// memory before a refetch.
const eventsCacheTTL = 5 * time.Minute

// Server provides the HTTP API: /health, /api/analyze, /api/events,
// /api/forecast.
type Server struct {
	cfg      *config.Config
	analyzer *analyze.Analyzer
	fetcher  *ics.Fetcher
	mux      *http.ServeMux

	// In-memory cache of fetched ICS events so every request does not hit
	// the feeds.
	eventsMu    sync.RWMutex
	eventsCache *eventsCache
}

type eventsCache struct {
	events    []model.Event
	fetchedAt time.Time
}

// NewServer constructs a Server.
func NewServer(cfg *config.Config, analyzer *analyze.Analyzer) *Server {
	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		fetcher:  ics.NewFetcher(cfg.CacheDir),
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/forecast", s.handleForecast)
	return s
}

// Handler returns the server's http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	ba := s.cfg.BasicAuth
	return ba != nil && ba.Username != "" && ba.Password != ""
}

// basicAuthMiddleware guards all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="MindSync", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze accepts a raw calendar payload and returns the full per-day
// report. Query params: date (YYYY-MM-DD, default today), previous_score.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAnalyzeBody))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	date, err := queryDate(r, "date")
	if err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	var previous *float64
	if raw := r.URL.Query().Get("previous_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid previous_score", http.StatusBadRequest)
			return
		}
		previous = &v
	}

	report, err := s.analyzer.Payload(body, date, previous)
	if err != nil {
		if errors.Is(err, normalize.ErrUnsupportedFormat) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleEvents returns the normalized events of the configured ICS sources
// for one day.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	events, err := s.feedEvents(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	day := model.SortByStart(model.FilterDate(events, date))
	writeJSON(w, http.StatusOK, map[string]any{
		"date":   date.Format("2006-01-02"),
		"events": day,
		"count":  len(day),
	})
}

// handleForecast analyzes the configured ICS sources over the coming days
// (default 7, max 31).
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 31 {
			http.Error(w, "invalid days, want 1..31", http.StatusBadRequest)
			return
		}
		days = v
	}

	events, err := s.feedEvents(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	start := time.Now().In(s.cfg.Location())
	writeJSON(w, http.StatusOK, s.analyzer.Forecast(events, start, days))
}

// feedEvents returns fetched+expanded events from the configured sources,
// serving from the in-memory cache while it is fresh.
func (s *Server) feedEvents(ctx context.Context) ([]model.Event, error) {
	s.eventsMu.RLock()
	cache := s.eventsCache
	s.eventsMu.RUnlock()
	if cache != nil && time.Since(cache.fetchedAt) < eventsCacheTTL {
		return cache.events, nil
	}
	return s.Refresh(ctx)
}

// Refresh refetches all configured ICS sources and replaces the cache. It
// is also the cron target in serve mode.
func (s *Server) Refresh(ctx context.Context) ([]model.Event, error) {
	if len(s.cfg.ICS) == 0 {
		return nil, errors.New("no ICS sources configured")
	}

	sources := make([]ics.Source, 0, len(s.cfg.ICS))
	for _, src := range s.cfg.ICS {
		sources = append(sources, ics.Source{ID: src.ID, URL: src.URL})
	}

	loc := s.cfg.Location()
	now := time.Now().In(loc)
	window := ics.ExpandConfig{
		Location:   loc,
		RangeStart: now.AddDate(0, 0, -1),
		RangeEnd:   now.AddDate(0, 0, 31),
	}

	events, errs := s.fetcher.FetchEvents(ctx, sources, s.analyzer.Normalizer, window)
	for _, err := range errs {
		appLog.Error("ics source failed during refresh", err)
	}
	if len(events) == 0 && len(errs) > 0 {
		return nil, errors.New("all ICS sources failed")
	}

	s.eventsMu.Lock()
	s.eventsCache = &eventsCache{events: events, fetchedAt: time.Now()}
	s.eventsMu.Unlock()

	appLog.Info("ics events refreshed", "events", len(events), "sources", len(sources))
	return events, nil
}

func queryDate(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to encode response", err)
	}
}
