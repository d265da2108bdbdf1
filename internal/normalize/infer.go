package normalize

import (
	"errors"
	"strings"
	"time"

	"mindsync/internal/model"
)

// InferType classifies an event from its text using the configured keyword
// lists, consulted in a fixed priority order. First match wins; matching is
// case-insensitive substring search.
func (n *Normalizer) InferType(title, description string) model.EventType {
	text := strings.ToLower(title + " " + description)

	ordered := []struct {
		words []string
		typ   model.EventType
	}{
		{n.keywords.Meeting, model.TypeMeeting},
		{n.keywords.Interview, model.TypeInterview},
		{n.keywords.Training, model.TypeTraining},
		{n.keywords.Break, model.TypeBreak},
		{n.keywords.Focus, model.TypeFocusTime},
		{n.keywords.Travel, model.TypeTravel},
	}
	for _, entry := range ordered {
		for _, w := range entry.words {
			if strings.Contains(text, w) {
				return entry.typ
			}
		}
	}
	return model.TypeOther
}

// parseTimeObject handles the nested provider form: either
// {"dateTime": "...", "timeZone": "..."} or the all-day {"date": "YYYY-MM-DD"}.
func (n *Normalizer) parseTimeObject(obj map[string]any) (time.Time, bool, error) {
	if dt, ok := obj["dateTime"].(string); ok {
		loc := n.loc
		if tz, ok := obj["timeZone"].(string); ok && tz != "" {
			if l, err := time.LoadLocation(tz); err == nil {
				loc = l
			}
		}
		t, err := parseTimestamp(dt, loc)
		return t, false, err
	}
	if d, ok := obj["date"].(string); ok {
		t, err := time.ParseInLocation("2006-01-02", d, n.loc)
		return t, true, err
	}
	return time.Time{}, false, errors.New("no dateTime or date field")
}

// parseWhen handles the generic schema's time forms: a combined date-time
// string, a bare date (all-day), or the nested provider object.
func (n *Normalizer) parseWhen(v any) (time.Time, bool, error) {
	switch w := v.(type) {
	case string:
		if !strings.Contains(w, "T") && !strings.Contains(w, " ") {
			t, err := time.ParseInLocation("2006-01-02", w, n.loc)
			return t, true, err
		}
		t, err := parseTimestamp(w, n.loc)
		return t, false, err
	case map[string]any:
		return n.parseTimeObject(w)
	default:
		return time.Time{}, false, errors.New("unsupported time value")
	}
}

// timestampLayouts are tried in order for combined date-time strings. The
// zone-less layouts are interpreted in the fallback location.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.9999999", // Graph exports carry 7-digit fractions
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
