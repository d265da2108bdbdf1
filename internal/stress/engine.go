// Package stress converts a day's worth of canonical events into a bounded,
// explainable stress score with a per-component breakdown.
package stress

import (
	"math"
	"strings"
	"time"

	"mindsync/internal/config"
	"mindsync/internal/model"
)

// Carryover parameters. Unresolved stress from the previous day raises
// today's multiplier, capped so a bad yesterday cannot dominate.
const (
	carryoverWeight = 0.25
	carryoverDecay  = 0.7
	carryoverCap    = 1.5
)

// Engine scores days. It is pure and safe for concurrent use: every call
// only reads the configured tables and its arguments.
type Engine struct {
	cfg config.Scoring
}

// New builds an Engine from scoring tables. The tables are expected to be
// normalized (config.Load does this); nil maps or zero weights here are a
// configuration error, not a runtime condition.
func New(cfg config.Scoring) *Engine {
	return &Engine{cfg: cfg}
}

// NewDefault builds an Engine with the calibrated default tables.
func NewDefault() *Engine {
	return New(config.DefaultScoring())
}

// Options are per-call scoring inputs beyond the events themselves.
type Options struct {
	// PreviousDayScore, when non-nil, feeds the carryover factor.
	PreviousDayScore *float64
}

// ScoreDay scores the events of a single calendar day. If date is non-zero
// the input is filtered to that day first, so callers may pass a whole
// calendar. Identical inputs always produce identical results.
func (e *Engine) ScoreDay(events []model.Event, date time.Time, opts Options) Result {
	day := events
	if !date.IsZero() {
		day = model.FilterDate(events, date)
	}

	meetings, excluded := e.excludeLunchBreaks(day)
	if len(meetings) == 0 {
		return e.noMeetingsResult(excluded, opts)
	}

	sorted := model.SortByStart(meetings)

	totalMinutes := 0
	for _, m := range sorted {
		totalMinutes += m.DurationMinutes()
	}
	totalHours := float64(totalMinutes) / 60

	avgDifficulty := e.averageDifficulty(sorted)
	base := (totalHours*e.cfg.Weights.HourlyWeight +
		float64(len(sorted)-1)*e.cfg.Weights.FrequencyWeight) * avgDifficulty

	backToBack, transitions := e.backToBackPenalty(sorted)
	lunch := e.lunchDisruptionPenalty(sorted)
	long := e.longMeetingPenalty(sorted)
	overload := e.overloadPenalty(len(sorted), totalHours)

	circadian := e.circadianFactor(sorted)
	carryover := carryoverFactor(opts.PreviousDayScore)

	raw := (base + backToBack + lunch + long + overload) * circadian * carryover

	// A single large penalty must not produce an implausible score on an
	// otherwise light day, so the ceiling depends on actual load.
	capped := math.Min(raw, e.loadCap(len(sorted), totalHours))
	score := round1(math.Max(0, capped))

	components := Components{
		BaseMeetingStress:      round1(base),
		BackToBackPenalty:      round1(backToBack),
		LunchDisruptionPenalty: round1(lunch),
		LongMeetingPenalty:     round1(long),
		OverloadPenalty:        round1(overload),
		DifficultyMultiplier:   round2(avgDifficulty),
		CircadianFactor:        round2(circadian),
		CarryoverFactor:        round2(carryover),
		MeetingCount:           len(sorted),
		TotalMeetingHours:      round1(totalHours),
		ExcludedBreaks:         excluded,
	}

	level := e.classify(score)
	return Result{
		Score:           score,
		Level:           level,
		Components:      components,
		Recommendations: e.recommendations(level, components),
		MeetingAnalysis: e.analyzeMeetings(sorted, transitions),
	}
}

// ScoreForecast scores consecutive days starting at startDate, chaining each
// day's score into the next day's carryover factor.
func (e *Engine) ScoreForecast(events []model.Event, startDate time.Time, days int, opts Options) []Result {
	results := make([]Result, 0, days)
	prev := opts.PreviousDayScore
	for i := 0; i < days; i++ {
		day := startDate.AddDate(0, 0, i)
		res := e.ScoreDay(events, day, Options{PreviousDayScore: prev})
		results = append(results, res)
		score := res.Score
		prev = &score
	}
	return results
}

func (e *Engine) noMeetingsResult(excluded int, opts Options) Result {
	return Result{
		Score: 0,
		Level: LevelNoMeetings,
		Components: Components{
			DifficultyMultiplier: 1.0,
			CircadianFactor:      1.0,
			CarryoverFactor:      round2(carryoverFactor(opts.PreviousDayScore)),
			ExcludedBreaks:       excluded,
		},
		Recommendations: []string{"Great! No meetings scheduled for today."},
		MeetingAnalysis: MeetingAnalysis{},
	}
}

// excludeLunchBreaks separates personal lunch/break events from work
// meetings. An event is a personal break if its text matches a lunch
// keyword, or if it sits in the lunch window with at most 2 participants
// and no high-stress keyword.
func (e *Engine) excludeLunchBreaks(events []model.Event) (meetings []model.Event, excluded int) {
	meetings = make([]model.Event, 0, len(events))
	for _, ev := range events {
		if e.isPersonalBreak(ev) {
			excluded++
			continue
		}
		meetings = append(meetings, ev)
	}
	return meetings, excluded
}

func (e *Engine) isPersonalBreak(ev model.Event) bool {
	text := eventText(ev)
	if matchAny(text, e.cfg.Keywords.Lunch) {
		return true
	}
	if e.overlapsLunchWindow(ev) && ev.Participants <= 2 && !matchAny(text, e.cfg.Keywords.HighStress) {
		return true
	}
	return false
}

// overlapsLunchWindow reports whether the event's interval intersects the
// configured lunch window on the event's own day.
func (e *Engine) overlapsLunchWindow(ev model.Event) bool {
	y, m, d := ev.Start.Date()
	loc := ev.Start.Location()
	lunchStart := time.Date(y, m, d, e.cfg.LunchStartHour, 0, 0, 0, loc)
	lunchEnd := time.Date(y, m, d, e.cfg.LunchEndHour, 0, 0, 0, loc)
	return ev.Start.Before(lunchEnd) && ev.End.After(lunchStart)
}

// averageDifficulty computes the mean per-meeting difficulty multiplier:
// participant tier x content keywords x sentiment.
func (e *Engine) averageDifficulty(meetings []model.Event) float64 {
	sum := 0.0
	for _, m := range meetings {
		sum += e.difficulty(m)
	}
	return sum / float64(len(meetings))
}

func (e *Engine) difficulty(ev model.Event) float64 {
	mult := e.cfg.Multipliers

	tier := mult.ParticipantsSmall
	switch {
	case ev.Participants > 5:
		tier = mult.ParticipantsLarge
	case ev.Participants > 2:
		tier = mult.ParticipantsGroup
	}

	text := eventText(ev)
	content := 1.0
	if matchAny(text, e.cfg.Keywords.HighStress) {
		content = mult.ContentHigh
	} else if matchAny(text, e.cfg.Keywords.LowStress) {
		content = mult.ContentLow
	}

	return tier * content * e.sentimentMultiplier(text)
}

// sentimentMultiplier is a deterministic keyword polarity scorer: the side
// with more word hits wins, ties are neutral.
func (e *Engine) sentimentMultiplier(text string) float64 {
	pos := countMatches(text, e.cfg.Keywords.Positive)
	neg := countMatches(text, e.cfg.Keywords.Negative)
	switch {
	case pos > neg:
		return e.cfg.Multipliers.SentimentPositive
	case neg > pos:
		return e.cfg.Multipliers.SentimentNegative
	default:
		return 1.0
	}
}

// backToBackPenalty walks consecutive pairs sorted by start time. Gaps of at
// most 10 minutes incur the full penalty; gaps up to 30 minutes incur half
// (insufficient recovery). It also returns the count of true back-to-back
// transitions for reporting.
func (e *Engine) backToBackPenalty(sorted []model.Event) (penalty float64, transitions int) {
	for i := 1; i < len(sorted); i++ {
		gap := model.GapMinutes(sorted[i-1], sorted[i])
		switch {
		case gap <= 10:
			penalty += e.cfg.Weights.BackToBack
			transitions++
		case gap <= 30:
			penalty += e.cfg.Weights.BackToBack / 2
		}
	}
	return penalty, transitions
}

func (e *Engine) lunchDisruptionPenalty(meetings []model.Event) float64 {
	penalty := 0.0
	for _, m := range meetings {
		if e.overlapsLunchWindow(m) {
			penalty += e.cfg.Weights.LunchDisruption
		}
	}
	return penalty
}

// longMeetingPenalty charges per started 30-minute increment beyond the
// long-meeting threshold.
func (e *Engine) longMeetingPenalty(meetings []model.Event) float64 {
	penalty := 0.0
	for _, m := range meetings {
		excess := m.DurationMinutes() - e.cfg.LongMeetingMinutes
		if excess > 0 {
			increments := math.Ceil(float64(excess) / 30)
			penalty += e.cfg.Weights.LongMeeting * increments
		}
	}
	return penalty
}

func (e *Engine) overloadPenalty(count int, hours float64) float64 {
	penalty := 0.0
	if count > e.cfg.DailyMeetingLimit {
		penalty += e.cfg.Weights.OverloadPerMeeting * float64(count-e.cfg.DailyMeetingLimit)
	}
	if hours > e.cfg.DailyHourLimit {
		penalty += e.cfg.Weights.OverloadPerHour * (hours - e.cfg.DailyHourLimit)
	}
	return penalty
}

// circadianFactor combines the average-start-hour fatigue factor with the
// day-of-week factor of the day being scored.
func (e *Engine) circadianFactor(meetings []model.Event) float64 {
	hourSum := 0
	for _, m := range meetings {
		hourSum += m.Start.Hour()
	}
	avgHour := hourSum / len(meetings)

	hourFactor := 1.0
	if f, ok := e.cfg.CircadianByHour[avgHour]; ok {
		hourFactor = f
	}

	dayFactor := 1.0
	weekday := strings.ToLower(meetings[0].Start.Weekday().String())
	if f, ok := e.cfg.DayOfWeek[weekday]; ok {
		dayFactor = f
	}
	return hourFactor * dayFactor
}

func carryoverFactor(previous *float64) float64 {
	if previous == nil {
		return 1.0
	}
	carry := 1 + carryoverWeight*(*previous/100)*carryoverDecay
	return math.Min(carry, carryoverCap)
}

// loadCap returns the score ceiling for the day's actual load tier.
func (e *Engine) loadCap(count int, hours float64) float64 {
	switch {
	case count <= 2 && hours <= 2:
		return e.cfg.LightDayCap
	case count <= e.cfg.DailyMeetingLimit && hours <= e.cfg.DailyHourLimit:
		return e.cfg.ModerateDayCap
	default:
		return e.cfg.HeavyDayCap
	}
}

func (e *Engine) analyzeMeetings(sorted []model.Event, transitions int) MeetingAnalysis {
	totalMinutes := 0
	longest := 0
	highStress := 0
	lunch := 0
	for _, m := range sorted {
		d := m.DurationMinutes()
		totalMinutes += d
		if d > longest {
			longest = d
		}
		if matchAny(eventText(m), e.cfg.Keywords.HighStress) {
			highStress++
		}
		if e.overlapsLunchWindow(m) {
			lunch++
		}
	}
	return MeetingAnalysis{
		TotalMeetings:         len(sorted),
		TotalHours:            round1(float64(totalMinutes) / 60),
		BackToBackTransitions: transitions,
		LunchMeetings:         lunch,
		HighStressMeetings:    highStress,
		FirstMeeting:          sorted[0].Start.Format("15:04"),
		LastMeeting:           sorted[len(sorted)-1].End.Format("15:04"),
		LongestMeetingMinutes: longest,
	}
}

func eventText(ev model.Event) string {
	return strings.ToLower(ev.Title + " " + ev.Description)
}

func matchAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func countMatches(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
