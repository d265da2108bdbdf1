// Package normalize converts raw calendar export payloads of several
// provider schemas into the canonical event representation.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mindsync/internal/config"
	appLog "mindsync/internal/log"
	"mindsync/internal/model"
)

// ErrUnsupportedFormat is returned when the top-level structure of a payload
// matches none of the known calendar schemas. It is fatal for that parse
// call; callers must not treat it as an empty calendar.
var ErrUnsupportedFormat = errors.New("normalize: unsupported calendar format")

// Normalizer turns raw calendar payloads into canonical events. The zero
// value is not usable; construct with New.
type Normalizer struct {
	keywords config.Keywords
	loc      *time.Location
}

// New returns a Normalizer using the default keyword tables and the local
// timezone for zone-less timestamps.
func New() *Normalizer {
	return NewWith(config.DefaultScoring().Keywords, time.Local)
}

// NewWith returns a Normalizer with explicit keyword tables and a fallback
// location for timestamps that carry no zone information.
func NewWith(kw config.Keywords, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{keywords: kw, loc: loc}
}

// schema is one (name, detect, parse) entry of the format-detection table.
// Detection is evaluated top to bottom; the first matching entry wins, so
// the most schema-specific keys must come first.
type schema struct {
	name   string
	detect func(raw any) bool
	items  func(raw any) []any
	mapOne func(n *Normalizer, item map[string]any) (model.Event, error)
}

func listUnder(key string) func(raw any) bool {
	return func(raw any) bool {
		m, ok := raw.(map[string]any)
		if !ok {
			return false
		}
		_, ok = m[key].([]any)
		return ok
	}
}

func itemsUnder(key string) func(raw any) []any {
	return func(raw any) []any {
		items, _ := raw.(map[string]any)[key].([]any)
		return items
	}
}

var schemas = []schema{
	{
		name:   "google",
		detect: listUnder("items"),
		items:  itemsUnder("items"),
		mapOne: (*Normalizer).fromGoogle,
	},
	{
		name:   "outlook",
		detect: listUnder("value"),
		items:  itemsUnder("value"),
		mapOne: (*Normalizer).fromOutlook,
	},
	{
		name:   "generic",
		detect: listUnder("events"),
		items:  itemsUnder("events"),
		mapOne: (*Normalizer).fromGeneric,
	},
	{
		name: "generic-list",
		detect: func(raw any) bool {
			_, ok := raw.([]any)
			return ok
		},
		items: func(raw any) []any {
			items, _ := raw.([]any)
			return items
		},
		mapOne: (*Normalizer).fromGeneric,
	},
}

// DetectFormat reports which schema a decoded payload matches, or "" when
// none does. Exposed so detection order is a testable policy of its own.
func DetectFormat(raw any) string {
	for _, s := range schemas {
		if s.detect(raw) {
			return s.name
		}
	}
	return ""
}

// Parse decodes a raw calendar payload and returns the canonical events it
// contains. Individual malformed items are logged and skipped; a well-formed
// payload with zero parseable events yields an empty, non-nil slice. An
// unrecognized top-level structure yields ErrUnsupportedFormat.
func (n *Normalizer) Parse(data []byte) ([]model.Event, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrUnsupportedFormat, err)
	}
	return n.ParseValue(raw)
}

// ParseValue is Parse for payloads already decoded into generic JSON values.
func (n *Normalizer) ParseValue(raw any) ([]model.Event, error) {
	var matched *schema
	for i := range schemas {
		if schemas[i].detect(raw) {
			matched = &schemas[i]
			break
		}
	}
	if matched == nil {
		return nil, ErrUnsupportedFormat
	}

	items := matched.items(raw)
	events := make([]model.Event, 0, len(items))
	for i, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			appLog.Warn("skipping non-object calendar item", "format", matched.name, "index", i)
			continue
		}
		ev, err := matched.mapOne(n, obj)
		if err != nil {
			appLog.Warn("skipping malformed calendar item",
				"format", matched.name, "index", i, "reason", err.Error())
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("calendar parsed", "format", matched.name, "items", len(items), "events", len(events))
	return events, nil
}

// Validate parses the payload and returns human-readable problems as
// per-index strings. It never returns an error: structural failures are
// reported as strings too, so callers can show them directly.
func (n *Normalizer) Validate(data []byte) []string {
	var problems []string

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return []string{"calendar data is not valid JSON"}
	}

	if DetectFormat(raw) == "" {
		return []string{"unknown calendar format"}
	}

	events, err := n.ParseValue(raw)
	if err != nil {
		return []string{fmt.Sprintf("error parsing calendar: %v", err)}
	}
	if len(events) == 0 {
		problems = append(problems, "no valid events found in calendar data")
	}

	for i, ev := range events {
		problems = append(problems, validateEvent(ev, i)...)
	}
	return problems
}

func validateEvent(ev model.Event, index int) []string {
	var errs []string
	if ev.Title == "" {
		errs = append(errs, fmt.Sprintf("event %d: missing title", index))
	}
	if !ev.Start.Before(ev.End) {
		errs = append(errs, fmt.Sprintf("event %d: start time must be before end time", index))
	}
	if ev.DurationMinutes() <= 0 {
		errs = append(errs, fmt.Sprintf("event %d: invalid duration", index))
	}
	if ev.Participants < 0 {
		errs = append(errs, fmt.Sprintf("event %d: invalid participant count", index))
	}
	return errs
}
