package log

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level Level, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(&bytes.Buffer{})
		SetLevel(LevelInfo)
	})
	fn()
	return buf.String()
}

func TestLevelFiltering(t *testing.T) {
	out := capture(t, LevelWarn, func() {
		Debug("debug line")
		Info("info line")
		Warn("warn line")
	})
	require.NotContains(t, out, "debug line")
	require.NotContains(t, out, "info line")
	require.Contains(t, out, "[WARN] warn line")
}

func TestDebugEnabled(t *testing.T) {
	out := capture(t, LevelDebug, func() {
		Debug("verbose", "step", 3)
	})
	require.Contains(t, out, "[DEBUG] verbose step=3")
}

func TestKeyValueFormatting(t *testing.T) {
	out := capture(t, LevelInfo, func() {
		Info("calendar parsed", "format", "google", "events", 12)
	})
	require.Contains(t, out, "[INFO] calendar parsed format=google events=12")
}

func TestErrorIncludesErr(t *testing.T) {
	out := capture(t, LevelInfo, func() {
		Error("fetch failed", errors.New("connection refused"), "id", "work")
	})
	require.Contains(t, out, "[ERROR] fetch failed err=connection refused id=work")
}

func TestOddTrailingKVIgnored(t *testing.T) {
	out := capture(t, LevelInfo, func() {
		Info("lonely", "key")
	})
	require.Contains(t, out, "[INFO] lonely")
	require.NotContains(t, out, "key=")
}
