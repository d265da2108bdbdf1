package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().Listen, cfg.Listen)
	require.Equal(t, DefaultScoring().Weights, cfg.Scoring.Weights)

	// The default config was persisted with restrictive permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:9999"
	cfg.Timezone = "Europe/Berlin"
	cfg.ICS = []ICSSource{{ID: "work", Name: "Work", URL: "https://example.com/work.ics"}}
	cfg.BasicAuth = &BasicAuthConfig{Username: "user", Password: "secret"}
	cfg.Scoring.Weights.BackToBack = 12

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", loaded.Listen)
	require.Equal(t, "Europe/Berlin", loaded.Timezone)
	require.Equal(t, cfg.ICS, loaded.ICS)
	require.Equal(t, cfg.BasicAuth, loaded.BasicAuth)
	require.Equal(t, 12.0, loaded.Scoring.Weights.BackToBack)
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := "listen: 127.0.0.1:7070\nscoring:\n  daily_meeting_limit: 6\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Explicit values survive, everything else falls back to defaults.
	require.Equal(t, "127.0.0.1:7070", cfg.Listen)
	require.Equal(t, 6, cfg.Scoring.DailyMeetingLimit)
	require.Equal(t, DefaultScoring().Weights, cfg.Scoring.Weights)
	require.Equal(t, DefaultScoring().Keywords.HighStress, cfg.Scoring.Keywords.HighStress)
	require.Equal(t, DefaultScoring().CircadianByHour, cfg.Scoring.CircadianByHour)
	require.Equal(t, DefaultConfig().RefreshCron, cfg.RefreshCron)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestLocationFallsBackToLocal(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg.Location())

	cfg.Timezone = "Not/AZone"
	require.NotNil(t, cfg.Location())

	cfg.Timezone = "Europe/Berlin"
	require.Equal(t, "Europe/Berlin", cfg.Location().String())
}
