package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mkEvent(start string, minutes int) Event {
	t, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return Event{
		ID:    "ev-" + start,
		Title: "Untitled Event",
		Start: t,
		End:   t.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestDurationMinutes(t *testing.T) {
	ev := mkEvent("2025-01-06T10:00:00Z", 30)
	require.Equal(t, 30, ev.DurationMinutes())
}

func TestIsMeetingByParticipants(t *testing.T) {
	ev := mkEvent("2025-01-06T10:00:00Z", 30)
	ev.Title = "Quiet block"
	require.False(t, ev.IsMeeting())

	ev.Participants = 3
	require.True(t, ev.IsMeeting())
}

func TestIsMeetingByKeyword(t *testing.T) {
	ev := mkEvent("2025-01-06T10:00:00Z", 30)
	ev.Title = "Weekly Standup"
	require.True(t, ev.IsMeeting())
}

func TestFilterDate(t *testing.T) {
	events := []Event{
		mkEvent("2025-01-06T09:00:00Z", 30),
		mkEvent("2025-01-07T09:00:00Z", 30),
		mkEvent("2025-01-06T15:00:00Z", 60),
	}
	day := FilterDate(events, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
	require.Len(t, day, 2)
	for _, ev := range day {
		require.True(t, ev.OnDate(2025, time.January, 6))
	}
}

func TestSortByStartDoesNotMutateInput(t *testing.T) {
	events := []Event{
		mkEvent("2025-01-06T15:00:00Z", 30),
		mkEvent("2025-01-06T09:00:00Z", 30),
	}
	sorted := SortByStart(events)
	require.True(t, sorted[0].Start.Before(sorted[1].Start))
	// Original order untouched.
	require.Equal(t, 15, events[0].Start.Hour())
}

func TestGapMinutes(t *testing.T) {
	a := mkEvent("2025-01-06T09:00:00Z", 30)
	b := mkEvent("2025-01-06T09:35:00Z", 30)
	require.InDelta(t, 5, GapMinutes(a, b), 0.001)

	// Overlapping events yield a negative gap.
	c := mkEvent("2025-01-06T09:15:00Z", 30)
	require.Less(t, GapMinutes(a, c), 0.0)
}
