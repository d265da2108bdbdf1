package analyze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mindsync/internal/config"
	"mindsync/internal/model"
	"mindsync/internal/normalize"
	"mindsync/internal/stress"
)

func testAnalyzer() *Analyzer {
	return New(config.DefaultScoring(), time.UTC)
}

func mkMeeting(title, start string, minutes, participants int) model.Event {
	ts, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return model.Event{
		ID:           "ev-" + title,
		Title:        title,
		Start:        ts,
		End:          ts.Add(time.Duration(minutes) * time.Minute),
		Type:         model.TypeMeeting,
		Participants: participants,
	}
}

func TestPayloadEndToEnd(t *testing.T) {
	a := testAnalyzer()
	payload := `{"items": [
		{"id": "g-1", "summary": "Sprint Planning Meeting",
		 "start": {"dateTime": "2025-01-07T09:00:00Z"},
		 "end": {"dateTime": "2025-01-07T10:00:00Z"},
		 "attendees": [{"email": "a@example.com"}, {"email": "b@example.com"}]},
		{"id": "g-2", "summary": "Next week sync",
		 "start": {"dateTime": "2025-01-14T09:00:00Z"},
		 "end": {"dateTime": "2025-01-14T10:00:00Z"}}
	]}`

	date := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	report, err := a.Payload([]byte(payload), date, nil)
	require.NoError(t, err)

	// Only the target day's event counts.
	require.Equal(t, "2025-01-07", report.Date)
	require.Equal(t, 1, report.EventCount)
	require.Len(t, report.Events, 1)
	require.Greater(t, report.Stress.Score, 0.0)
	require.NotEmpty(t, report.Suggestions.BreakSuggestions)
	require.NotEmpty(t, report.Stress.Recommendations)
}

func TestPayloadUnsupportedFormat(t *testing.T) {
	a := testAnalyzer()
	_, err := a.Payload([]byte(`{"calendar": []}`), time.Now(), nil)
	require.ErrorIs(t, err, normalize.ErrUnsupportedFormat)
}

func TestDayEmptySchedule(t *testing.T) {
	a := testAnalyzer()
	report := a.Day(nil, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), nil)

	require.Equal(t, 0, report.EventCount)
	require.Equal(t, 0.0, report.Stress.Score)
	require.Equal(t, stress.LevelNoMeetings, report.Stress.Level)
	require.Equal(t, "No meetings scheduled.", report.Suggestions.Summary)
	require.Nil(t, report.Emergency)
}

func TestDayEmergencyListAtHighScore(t *testing.T) {
	a := testAnalyzer()
	events := []model.Event{
		mkMeeting("Sync 1", "2025-01-07T09:00:00Z", 30, 2),
		mkMeeting("Sync 2", "2025-01-07T09:35:00Z", 30, 2),
		mkMeeting("Sync 3", "2025-01-07T10:10:00Z", 30, 2),
		mkMeeting("Sync 4", "2025-01-07T10:45:00Z", 30, 2),
		mkMeeting("Sync 5", "2025-01-07T11:20:00Z", 30, 2),
	}

	report := a.Day(events, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), nil)
	require.GreaterOrEqual(t, report.Stress.Score, 75.0)
	require.Len(t, report.Emergency, 5)
}

func TestForecastChainsCarryover(t *testing.T) {
	a := testAnalyzer()
	events := []model.Event{
		mkMeeting("Sync 1", "2025-01-07T09:00:00Z", 30, 2),
		mkMeeting("Sync 2", "2025-01-07T09:35:00Z", 30, 2),
		mkMeeting("Sync 3", "2025-01-07T10:10:00Z", 30, 2),
		mkMeeting("Sync 4", "2025-01-07T10:45:00Z", 30, 2),
		mkMeeting("Sync 5", "2025-01-07T11:20:00Z", 30, 2),
	}

	start := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	reports := a.Forecast(events, start, 3)
	require.Len(t, reports, 3)

	require.Equal(t, "2025-01-07", reports[0].Date)
	require.Equal(t, "2025-01-08", reports[1].Date)
	require.Greater(t, reports[0].Stress.Score, 0.0)

	// Day two is empty, but yesterday's load shows up in its carryover.
	require.Equal(t, 0, reports[1].EventCount)
	require.Greater(t, reports[1].Stress.Components.CarryoverFactor, 1.0)
	// An empty day resets the chain by day three.
	require.Equal(t, 1.0, reports[2].Stress.Components.CarryoverFactor)
}
