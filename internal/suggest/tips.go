package suggest

import (
	"fmt"
	"sort"
	"time"

	"mindsync/internal/model"
	"mindsync/internal/stress"
)

// maxTips caps the optimization tip list.
const maxTips = 5

// optimizationTips derives schedule advice from the stress components via
// independent trigger rules. Rule order is the priority order: when more
// than maxTips rules fire, the earlier ones win.
func (e *Engine) optimizationTips(res stress.Result) []string {
	tips := make([]string, 0, 8)
	c := res.Components

	if c.BackToBackPenalty > 20 {
		tips = append(tips, "Consider adding 15-minute buffers between consecutive meetings")
	}
	if c.LunchDisruptionPenalty > 0 {
		tips = append(tips, "Protect your lunch hour - consider rescheduling non-critical lunch meetings")
	}
	if c.MeetingCount >= 5 {
		tips = append(tips, "Use 'Do Not Disturb' between meetings to focus")
	}
	if res.Score > 60 {
		tips = append(tips,
			"Prepare meeting agendas in advance to reduce in-meeting stress",
			"Set hydration reminders throughout the day")
	}
	if res.Score > 40 {
		tips = append(tips, "Consider starting the day with 5 minutes of mindfulness")
	}
	if res.Score <= 20 {
		tips = append(tips, "Great schedule! Use this energy for creative or strategic work")
	}

	if len(tips) > maxTips {
		tips = tips[:maxTips]
	}
	return tips
}

// dailyPlan merges a fixed morning-preparation slot, the top break
// suggestions, and an end-of-day closure slot, ordered by time of day.
func (e *Engine) dailyPlan(sorted []model.Event, breaks []BreakSuggestion) []PlanEntry {
	plan := make([]PlanEntry, 0, 5)

	if sorted[0].Start.Hour() >= 9 {
		plan = append(plan, PlanEntry{
			Time:     "08:30",
			Activity: "Morning preparation - review agenda, set intentions",
			Kind:     "preparation",
		})
	}

	top := breaks
	if len(top) > 3 {
		top = top[:3]
	}
	for _, b := range top {
		plan = append(plan, PlanEntry{
			Time:     b.Time,
			Activity: fmt.Sprintf("%s (%d min)", b.Activity, b.DurationMinutes),
			Kind:     "break",
		})
	}

	last := sorted[len(sorted)-1]
	plan = append(plan, PlanEntry{
		Time:     clock(last.End.Add(30 * time.Minute)),
		Activity: "Day wrap-up - review accomplishments, plan tomorrow",
		Kind:     "closure",
	})

	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].Time < plan[j].Time
	})
	return plan
}

// EmergencySuggestions is a pure function of the score alone, independent of
// any date or schedule: a critical-action list at 75+, a shorter cautionary
// list at 50+, otherwise nothing.
func EmergencySuggestions(score float64) []string {
	switch {
	case score >= 75:
		return []string{
			"IMMEDIATE: Take 10 deep breaths right now",
			"Cancel or reschedule non-critical meetings",
			"Block 15-minute recovery breaks in your calendar",
			"Speak with your manager about workload",
			"Consider working from home if possible",
		}
	case score >= 50:
		return []string{
			"Take a 5-minute break before your next meeting",
			"Prepare agendas to make meetings more efficient",
			"Decline lunch meetings to preserve energy",
			"Set boundaries on after-hours communications",
		}
	default:
		return nil
	}
}
