// Package suggest turns a day's schedule shape and its stress result into
// concrete, prioritized wellbeing suggestions.
package suggest

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"mindsync/internal/config"
	"mindsync/internal/model"
	"mindsync/internal/stress"
)

// Category classifies what kind of activity a break suggestion proposes.
type Category string

const (
	CategoryMindfulness Category = "mindfulness"
	CategoryMovement    Category = "movement"
	CategoryRecovery    Category = "recovery"
	CategoryMental      Category = "mental"
	CategoryPreparation Category = "preparation"
)

// BreakSuggestion is one recommended break.
type BreakSuggestion struct {
	// Time is the clock time ("HH:MM") the break should start.
	Time            string   `json:"time"`
	DurationMinutes int      `json:"duration_minutes"`
	Priority        int      `json:"priority"` // 1..5, 5 most urgent
	Category        Category `json:"category"`
	Activity        string   `json:"activity"`
	Reason          string   `json:"reason"`
}

// PlanEntry is one slot of the assembled daily wellbeing plan.
type PlanEntry struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Kind     string `json:"type"` // preparation, break, closure, focus
}

// Suggestions is the full output of the engine for one day.
type Suggestions struct {
	BreakSuggestions []BreakSuggestion `json:"break_suggestions"`
	OptimizationTips []string          `json:"optimization_tips"`
	DailyPlan        []PlanEntry       `json:"daily_plan"`
	Summary          string            `json:"summary"`
}

// Engine generates suggestions. Activity phrase selection defaults to a
// deterministic first-phrase policy; inject a rand source to restore varied
// picks (tests rely on the deterministic default).
type Engine struct {
	keywords config.Keywords
	rng      *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand makes phrase selection uniform over each tier's candidates using
// the given source.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithKeywords overrides the keyword tables used for priority bumps.
func WithKeywords(kw config.Keywords) Option {
	return func(e *Engine) { e.keywords = kw }
}

// New builds an Engine with default keyword tables and deterministic phrase
// selection.
func New(opts ...Option) *Engine {
	e := &Engine{keywords: config.DefaultScoring().Keywords}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Suggest produces break suggestions, optimization tips, a daily plan, and a
// one-line summary for the given day.
func (e *Engine) Suggest(events []model.Event, res stress.Result) Suggestions {
	if len(events) == 0 {
		return Suggestions{
			BreakSuggestions: []BreakSuggestion{},
			OptimizationTips: []string{"Great! No meetings today. Focus on deep work."},
			DailyPlan: []PlanEntry{
				{Time: "09:00", Activity: "Start your productive day!", Kind: "focus"},
			},
			Summary: "No meetings scheduled.",
		}
	}

	sorted := model.SortByStart(events)
	breaks := e.findBreakOpportunities(sorted)

	// Most urgent first; equal priorities keep chronological order.
	sort.SliceStable(breaks, func(i, j int) bool {
		return breaks[i].Priority > breaks[j].Priority
	})

	tips := e.optimizationTips(res)

	return Suggestions{
		BreakSuggestions: breaks,
		OptimizationTips: tips,
		DailyPlan:        e.dailyPlan(sorted, breaks),
		Summary:          summarize(breaks, tips),
	}
}

// findBreakOpportunities handles the three schedule shapes explicitly:
// a single event, two or more events, and (on heavy days) the single
// longest gap.
func (e *Engine) findBreakOpportunities(sorted []model.Event) []BreakSuggestion {
	if len(sorted) == 1 {
		return e.singleEventBreaks(sorted[0])
	}

	suggestions := make([]BreakSuggestion, 0, len(sorted)+2)

	first := sorted[0]
	suggestions = append(suggestions, BreakSuggestion{
		Time:            clock(first.Start.Add(-15 * time.Minute)),
		DurationMinutes: 10,
		Priority:        2,
		Category:        CategoryPreparation,
		Activity:        e.pickActivity(CategoryPreparation, 10),
		Reason:          "Settle in before your first meeting",
	})

	for i := 0; i+1 < len(sorted); i++ {
		gap := model.GapMinutes(sorted[i], sorted[i+1])
		if gap < 2 {
			continue
		}
		suggestions = append(suggestions, e.gapBreak(sorted[i], sorted[i+1], gap))
	}

	last := sorted[len(sorted)-1]
	suggestions = append(suggestions, BreakSuggestion{
		Time:            clock(last.End),
		DurationMinutes: 10,
		Priority:        3,
		Category:        CategoryRecovery,
		Activity:        e.pickActivity(CategoryRecovery, 10),
		Reason:          "Decompress after your last meeting",
	})

	if len(sorted) >= 4 {
		if ext, ok := e.extendedRecovery(sorted); ok {
			suggestions = append(suggestions, ext)
		}
	}
	return suggestions
}

func (e *Engine) singleEventBreaks(ev model.Event) []BreakSuggestion {
	suggestions := make([]BreakSuggestion, 0, 2)
	if ev.Start.Hour() >= 10 {
		suggestions = append(suggestions, BreakSuggestion{
			Time:            clock(ev.Start.Add(-15 * time.Minute)),
			DurationMinutes: 10,
			Priority:        2,
			Category:        CategoryPreparation,
			Activity:        e.pickActivity(CategoryPreparation, 10),
			Reason:          "Prepare before your meeting",
		})
	}
	if ev.End.Hour() < 18 {
		suggestions = append(suggestions, BreakSuggestion{
			Time:            clock(ev.End),
			DurationMinutes: 10,
			Priority:        3,
			Category:        CategoryRecovery,
			Activity:        e.pickActivity(CategoryRecovery, 10),
			Reason:          "Recover after your meeting",
		})
	}
	return suggestions
}

// gapBreak maps a gap between two consecutive meetings onto a break whose
// duration, priority, and category come from the gap-length tier, with the
// priority further raised by the preceding meeting's demands.
func (e *Engine) gapBreak(prev, next model.Event, gap float64) BreakSuggestion {
	var (
		priority int
		category Category
		duration int
	)
	switch {
	case gap < 5:
		priority, category, duration = 2, CategoryMindfulness, 2
	case gap < 10:
		priority, category, duration = 3, CategoryMindfulness, 3
	case gap < 15:
		priority, category, duration = 3, CategoryRecovery, 5
	default:
		priority, category, duration = 4, CategoryMovement, 10
	}

	// A demanding next meeting benefits more from mental preparation than
	// from movement.
	if gap >= 15 && matchAny(eventText(next), e.keywords.HighStress) {
		category = CategoryMental
	}

	priority += e.priorityBump(prev)
	if priority > 5 {
		priority = 5
	}

	return BreakSuggestion{
		Time:            clock(prev.End),
		DurationMinutes: duration,
		Priority:        priority,
		Category:        category,
		Activity:        e.pickActivity(category, duration),
		Reason:          breakReason(prev, gap),
	}
}

// priorityBump raises urgency by one for each sign the preceding meeting was
// draining: a high-stress title, a large group, or a long duration.
func (e *Engine) priorityBump(prev model.Event) int {
	bump := 0
	if matchAny(eventText(prev), e.keywords.HighStress) {
		bump++
	}
	if prev.Participants > 5 {
		bump++
	}
	if prev.DurationMinutes() > 60 {
		bump++
	}
	return bump
}

// extendedRecovery locates the single longest inter-meeting gap on a heavy
// day and, if it allows at least 30 minutes, places one top-priority
// extended recovery break there.
func (e *Engine) extendedRecovery(sorted []model.Event) (BreakSuggestion, bool) {
	longestGap := 0.0
	longestIdx := -1
	for i := 0; i+1 < len(sorted); i++ {
		gap := model.GapMinutes(sorted[i], sorted[i+1])
		if gap > longestGap {
			longestGap = gap
			longestIdx = i
		}
	}
	if longestIdx < 0 || longestGap < 30 {
		return BreakSuggestion{}, false
	}
	return BreakSuggestion{
		Time:            clock(sorted[longestIdx].End),
		DurationMinutes: 20,
		Priority:        5,
		Category:        CategoryRecovery,
		Activity:        "Extended recovery: step away from your desk completely",
		Reason:          "Heavy meeting day - use your longest gap to truly recharge",
	}, true
}

func breakReason(prev model.Event, gap float64) string {
	switch {
	case gap <= 10:
		return "Back-to-back meetings detected - mental reset needed"
	case prev.DurationMinutes() > 90:
		return "Long meeting completed - physical movement recommended"
	case prev.Participants > 8:
		return "Large group meeting - recovery time beneficial"
	default:
		return "Opportunity for wellbeing break"
	}
}

func clock(t time.Time) string {
	return t.Format("15:04")
}

func summarize(breaks []BreakSuggestion, tips []string) string {
	if len(breaks) == 0 {
		return "No break opportunities found. Consider optimizing your schedule."
	}
	highPriority := 0
	for _, b := range breaks {
		if b.Priority >= 4 {
			highPriority++
		}
	}
	summary := fmt.Sprintf("Found %d break opportunities", len(breaks))
	if highPriority > 0 {
		summary += fmt.Sprintf(" (%d high priority)", highPriority)
	}
	return fmt.Sprintf("%s. %d optimization tips available.", summary, len(tips))
}
