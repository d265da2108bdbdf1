package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mindsync/internal/analyze"
	"mindsync/internal/config"
	appLog "mindsync/internal/log"
)

func TestMain(m *testing.M) {
	appLog.SetOutput(io.Discard)
	m.Run()
}

func testServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.CacheDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	analyzer := analyze.New(cfg.Scoring, time.UTC)
	srv := httptest.NewServer(NewServer(cfg, analyzer).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := testServer(t, nil)

	payload := `{"events": [
		{"id": "e-1", "title": "Planning meeting", "start": "2025-01-07T09:00:00Z",
		 "end": "2025-01-07T10:00:00Z", "attendees": ["a", "b", "c"]}
	]}`
	resp, err := http.Post(srv.URL+"/api/analyze?date=2025-01-07", "application/json",
		strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report analyze.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.Equal(t, "2025-01-07", report.Date)
	require.Equal(t, 1, report.EventCount)
	require.Greater(t, report.Stress.Score, 0.0)
}

func TestAnalyzeEndpointUnsupportedFormat(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/analyze", "application/json",
		strings.NewReader(`{"calendar": []}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestAnalyzeEndpointInvalidQuery(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Post(srv.URL+"/api/analyze?date=tomorrow", "application/json",
		strings.NewReader(`{"events": []}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/analyze?previous_score=high", "application/json",
		strings.NewReader(`{"events": []}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEventsEndpointWithoutSources(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/events?date=2025-01-07")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestForecastEndpointRejectsBadDays(t *testing.T) {
	srv := testServer(t, nil)

	for _, days := range []string{"0", "32", "many"} {
		resp, err := http.Get(srv.URL + "/api/forecast?days=" + days)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "days=%s", days)
	}
}

func TestBasicAuth(t *testing.T) {
	srv := testServer(t, func(cfg *config.Config) {
		cfg.BasicAuth = &config.BasicAuthConfig{Username: "user", Password: "secret"}
	})

	// Health stays open.
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// API endpoints require credentials.
	resp, err = http.Post(srv.URL+"/api/analyze", "application/json",
		strings.NewReader(`{"events": []}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/analyze?date=2025-01-07",
		strings.NewReader(`{"events": []}`))
	require.NoError(t, err)
	req.SetBasicAuth("user", "secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/analyze?date=2025-01-07",
		strings.NewReader(`{"events": []}`))
	require.NoError(t, err)
	req.SetBasicAuth("user", "wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
