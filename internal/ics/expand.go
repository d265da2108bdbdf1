package ics

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	appLog "mindsync/internal/log"
	"mindsync/internal/model"
)

const defaultMaxOccurrencesPerEvent = 1000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// Location is the timezone occurrences are converted into. Nil means
	// time.Local.
	Location *time.Location

	// RangeStart / RangeEnd bound the inclusive expansion window.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway rules. Zero means the default.
	MaxOccurrencesPerEvent int
}

// Expand turns parsed entries into concrete canonical events within the
// configured window: one-off events pass through (range-filtered), RRULE
// entries are expanded with EXDATEs removed. Occurrence ids are suffixed
// with the instance start so each occurrence stays uniquely addressable.
func Expand(entries []Entry, cfg ExpandConfig) ([]model.Event, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("ics: expand range end before start")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	out := make([]model.Event, 0, len(entries))
	for _, entry := range entries {
		if entry.RawRRule == "" {
			if overlaps(entry.Event.Start, entry.Event.End, cfg.RangeStart, cfg.RangeEnd) {
				out = append(out, localized(entry.Event, entry.Event.Start, entry.Event.End, cfg.Location))
			}
			continue
		}
		occ, err := expandRecurring(entry, cfg)
		if err != nil {
			appLog.Warn("skipping recurring event with bad RRULE",
				"id", entry.Event.ID, "reason", err.Error())
			continue
		}
		out = append(out, occ...)
	}
	return out, nil
}

func expandRecurring(entry Entry, cfg ExpandConfig) ([]model.Event, error) {
	r, err := rrule.StrToRRule(entry.RawRRule)
	if err != nil {
		return nil, fmt.Errorf("parse rrule %q: %w", entry.RawRRule, err)
	}
	r.DTStart(entry.Event.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range entry.ExDates {
		set.ExDate(ex.In(entry.Event.Start.Location()))
	}

	// Between() compares in the rule's own location.
	loc := entry.Event.Start.Location()
	starts := set.Between(cfg.RangeStart.In(loc), cfg.RangeEnd.In(loc), true)
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		appLog.Warn("recurrence expansion truncated",
			"id", entry.Event.ID, "cap", cfg.MaxOccurrencesPerEvent)
		starts = starts[:cfg.MaxOccurrencesPerEvent]
	}

	duration := entry.Event.End.Sub(entry.Event.Start)
	out := make([]model.Event, 0, len(starts))
	for _, start := range starts {
		if entry.Event.AllDay {
			day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			out = append(out, localized(entry.Event, day, day.Add(24*time.Hour), cfg.Location))
			continue
		}
		out = append(out, localized(entry.Event, start, start.Add(duration), cfg.Location))
	}
	return out, nil
}

// localized copies the template event with concrete, zone-converted times
// and an instance-qualified id.
func localized(template model.Event, start, end time.Time, loc *time.Location) model.Event {
	ev := template
	ev.Start = start.In(loc)
	ev.End = end.In(loc)
	if template.Recurring {
		ev.ID = template.ID + "@" + ev.Start.Format(time.RFC3339)
	}
	return ev
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
