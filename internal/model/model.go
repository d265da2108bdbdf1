package model

import (
	"sort"
	"strings"
	"time"
)

// EventType classifies what kind of calendar entry an Event is. When the
// source schema does not carry a type, the normalizer infers one from the
// event text.
type EventType string

const (
	TypeMeeting   EventType = "meeting"
	TypeFocusTime EventType = "focus_time"
	TypeBreak     EventType = "break"
	TypeInterview EventType = "interview"
	TypeTraining  EventType = "training"
	TypeTravel    EventType = "travel"
	TypeOther     EventType = "other"
)

// Importance mirrors the three-level importance flag carried by Outlook-style
// exports. Sources without the field default to ImportanceNormal.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

// Status is the confirmation state of an event.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusTentative Status = "tentative"
	StatusCancelled Status = "cancelled"
)

// Event is the canonical, schema-independent representation of a calendar
// entry. All parsers (Google export, Outlook export, generic JSON, ICS)
// produce this type, and the scoring and suggestion engines consume it.
//
// Events are treated as immutable once constructed; engines never modify
// their inputs.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`

	// Start / End carry timezone information where the source provided it.
	// Invariant: Start < End for any valid event.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Type EventType `json:"event_type"`

	Participants int      `json:"participants"`
	Attendees    []string `json:"attendees,omitempty"`
	Organizer    string   `json:"organizer,omitempty"`

	AllDay        bool `json:"is_all_day"`
	OnlineMeeting bool `json:"is_online_meeting"`
	Recurring     bool `json:"recurring"`

	Importance Importance `json:"importance"`
	Status     Status     `json:"status"`
}

// DurationMinutes returns the event length in whole minutes.
func (e Event) DurationMinutes() int {
	return int(e.End.Sub(e.Start).Minutes())
}

// meetingKeywords are title words that mark an event as a meeting even when
// the attendee list is empty (e.g. a bare "Team sync" entry).
var meetingKeywords = []string{"meeting", "call", "conference", "standup", "sync", "review"}

// IsMeeting reports whether the event behaves like a meeting: either more
// than one person is involved, or the title says so.
func (e Event) IsMeeting() bool {
	if e.Participants > 1 || len(e.Attendees) > 1 {
		return true
	}
	title := strings.ToLower(e.Title)
	for _, kw := range meetingKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

// OnDate reports whether the event starts on the given calendar day,
// evaluated in the event's own timezone.
func (e Event) OnDate(year int, month time.Month, day int) bool {
	y, m, d := e.Start.Date()
	return y == year && m == month && d == day
}

// FilterDate returns the subset of events starting on the given day.
func FilterDate(events []Event, date time.Time) []Event {
	y, m, d := date.Date()
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.OnDate(y, m, d) {
			out = append(out, e)
		}
	}
	return out
}

// SortByStart returns a copy of events ordered by start time. The input
// slice is left untouched so callers can rely on immutability.
func SortByStart(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	return sorted
}

// GapMinutes returns the free time in minutes between the end of a and the
// start of b. Negative values mean the two events overlap.
func GapMinutes(a, b Event) float64 {
	return b.Start.Sub(a.End).Minutes()
}
