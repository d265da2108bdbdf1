// Package analyze composes the normalization, scoring, and suggestion
// stages into the full per-day pipeline consumed by the CLI and HTTP API.
package analyze

import (
	"time"

	"mindsync/internal/config"
	"mindsync/internal/model"
	"mindsync/internal/normalize"
	"mindsync/internal/stress"
	"mindsync/internal/suggest"
)

// Report is the complete analysis of one day, safe to serialize to JSON.
type Report struct {
	Date        string              `json:"date"`
	EventCount  int                 `json:"event_count"`
	Events      []model.Event       `json:"events"`
	Stress      stress.Result       `json:"stress"`
	Suggestions suggest.Suggestions `json:"suggestions"`
	Emergency   []string            `json:"emergency_suggestions,omitempty"`
}

// Analyzer holds the three pipeline stages. It retains no state between
// calls; every analysis is a pure function of its inputs.
type Analyzer struct {
	Normalizer *normalize.Normalizer
	Stress     *stress.Engine
	Suggest    *suggest.Engine
}

// New builds an Analyzer from scoring tables and the fallback timezone for
// zone-less timestamps.
func New(scoring config.Scoring, loc *time.Location) *Analyzer {
	return &Analyzer{
		Normalizer: normalize.NewWith(scoring.Keywords, loc),
		Stress:     stress.New(scoring),
		Suggest:    suggest.New(suggest.WithKeywords(scoring.Keywords)),
	}
}

// Day runs scoring and suggestions over already-normalized events for one
// date. previousScore, when non-nil, feeds the carryover factor.
func (a *Analyzer) Day(events []model.Event, date time.Time, previousScore *float64) Report {
	dayEvents := model.SortByStart(model.FilterDate(events, date))
	res := a.Stress.ScoreDay(dayEvents, time.Time{}, stress.Options{PreviousDayScore: previousScore})
	sug := a.Suggest.Suggest(dayEvents, res)

	return Report{
		Date:        date.Format("2006-01-02"),
		EventCount:  len(dayEvents),
		Events:      dayEvents,
		Stress:      res,
		Suggestions: sug,
		Emergency:   suggest.EmergencySuggestions(res.Score),
	}
}

// Payload normalizes a raw calendar payload and analyzes the given date.
func (a *Analyzer) Payload(data []byte, date time.Time, previousScore *float64) (Report, error) {
	events, err := a.Normalizer.Parse(data)
	if err != nil {
		return Report{}, err
	}
	return a.Day(events, date, previousScore), nil
}

// Forecast analyzes consecutive days, chaining each day's score into the
// next day's carryover.
func (a *Analyzer) Forecast(events []model.Event, start time.Time, days int) []Report {
	reports := make([]Report, 0, days)
	var prev *float64
	for i := 0; i < days; i++ {
		rep := a.Day(events, start.AddDate(0, 0, i), prev)
		reports = append(reports, rep)
		score := rep.Stress.Score
		prev = &score
	}
	return reports
}
