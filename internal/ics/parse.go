// Package ics ingests ICS subscription feeds as an additional calendar
// source, expanding recurring entries into canonical events.
package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "mindsync/internal/log"
	"mindsync/internal/model"
	"mindsync/internal/normalize"
)

// Source identifies a single ICS subscription feed.
type Source struct {
	// ID is an internal identifier used for event ids and logging.
	ID string
	// URL is the ICS endpoint.
	URL string
}

// Entry is one VEVENT lifted to the canonical event, plus the recurrence
// data needed for expansion.
type Entry struct {
	Event model.Event

	// RawRRule is the unexpanded RRULE, empty for one-off events.
	RawRRule string
	// ExDates are recurrence exceptions in the event's own timezone.
	ExDates []time.Time
}

// Parse parses a single ICS payload into entries. Individual VEVENTs that
// cannot be parsed are logged and skipped so one broken entry does not sink
// the feed. The normalizer supplies event type inference; pass nil for the
// default keyword tables.
func Parse(src Source, body []byte, norm *normalize.Normalizer) ([]Entry, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if norm == nil {
		norm = normalize.New()
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID)
		return nil, err
	}

	entries := make([]Entry, 0)
	for _, ve := range cal.Events() {
		entry, perr := parseVEvent(src, ve, norm)
		if perr != nil {
			appLog.Warn("skipping unparseable vevent", "id", src.ID, "reason", perr.Error())
			continue
		}
		entries = append(entries, entry)
	}

	appLog.Debug("ics parsed", "id", src.ID, "entries", len(entries))
	return entries, nil
}

func parseVEvent(src Source, ve *ical.VEvent, norm *normalize.Normalizer) (Entry, error) {
	var entry Entry

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return entry, errors.New("missing UID")
	}

	ev := model.Event{
		ID:         src.ID + "/" + uidProp.Value,
		Title:      "Untitled Event",
		Importance: model.ImportanceNormal,
		Status:     model.StatusConfirmed,
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil && p.Value != "" {
		ev.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		ev.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		ev.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		switch strings.ToUpper(p.Value) {
		case "TENTATIVE":
			ev.Status = model.StatusTentative
		case "CANCELLED":
			ev.Status = model.StatusCancelled
		}
	}

	// The library's helpers resolve VTIMEZONE/TZID into proper locations.
	start, err := ve.GetStartAt()
	if err != nil {
		return entry, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return entry, err
	}
	ev.Start = start
	ev.End = end

	// All-day: DTSTART with VALUE=DATE or a bare date value.
	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		if params := dtStart.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				ev.AllDay = true
			}
		}
		if !strings.Contains(dtStart.Value, "T") {
			ev.AllDay = true
		}
	}
	if ev.AllDay && !ev.End.After(ev.Start) {
		ev.End = ev.Start.Add(24 * time.Hour)
	}

	attendees := ve.Attendees()
	ev.Participants = len(attendees)
	for _, a := range attendees {
		ev.Attendees = append(ev.Attendees, strings.TrimPrefix(a.Value, "mailto:"))
	}
	if p := ve.GetProperty(ical.ComponentPropertyOrganizer); p != nil {
		ev.Organizer = strings.TrimPrefix(p.Value, "mailto:")
	}

	if rrule := ve.GetProperty(ical.ComponentPropertyRrule); rrule != nil {
		entry.RawRRule = rrule.Value
		ev.Recurring = true
	}

	// EXDATE may appear multiple times, each possibly holding a list.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, ev.Start.Location()); err == nil {
				entry.ExDates = append(entry.ExDates, t)
			}
		}
	}

	ev.Type = norm.InferType(ev.Title, ev.Description)
	entry.Event = ev
	return entry, nil
}

// parseICSTime parses a basic ICS date/date-time value. EXDATE values do not
// carry full parameter context here, so zone-less forms are interpreted in
// the event's own location.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}
