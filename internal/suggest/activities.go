package suggest

import (
	"sort"
	"strings"

	"mindsync/internal/model"
)

// activityTiers maps each category to candidate phrases keyed by duration
// tier (minutes). pickActivity selects the largest tier that fits the
// available duration.
var activityTiers = map[Category]map[int][]string{
	CategoryMindfulness: {
		2:  {"Take 3 deep breaths", "Quick gratitude moment"},
		5:  {"5-minute meditation", "Mindful breathing", "Body scan"},
		10: {"Guided meditation", "Mindfulness practice", "Stress visualization"},
	},
	CategoryMovement: {
		3:  {"Neck rolls", "Shoulder shrugs", "Ankle circles"},
		5:  {"Desk stretches", "Walk to water cooler", "Quick posture reset"},
		10: {"Walk around building", "Stair climbing", "Full body stretch"},
		15: {"Outdoor walk", "Yoga poses", "Exercise routine"},
	},
	CategoryRecovery: {
		3:  {"Hydrate", "Eye rest (20-20-20)", "Deep breath"},
		5:  {"Healthy snack", "Posture check", "Workspace tidy"},
		10: {"Complete break", "Fresh air", "Mental reset"},
	},
	CategoryMental: {
		5:  {"Review priorities", "Quick journaling", "Email triage"},
		10: {"Task planning", "Note organization", "Goal check"},
		15: {"Weekly review", "Strategic thinking", "Project planning"},
	},
	CategoryPreparation: {
		5:  {"Skim the agenda", "Jot down your key points"},
		10: {"Review agenda and set intentions", "Gather notes and materials"},
	},
}

// pickActivity returns a phrase for the category fitting the duration. With
// no rand source configured, the first phrase of the tier is chosen, which
// keeps output fully deterministic.
func (e *Engine) pickActivity(category Category, durationMinutes int) string {
	tiers := activityTiers[category]

	keys := make([]int, 0, len(tiers))
	for k := range tiers {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	tier := keys[0]
	for _, k := range keys {
		if k <= durationMinutes {
			tier = k
		}
	}

	phrases := tiers[tier]
	if e.rng != nil {
		return phrases[e.rng.Intn(len(phrases))]
	}
	return phrases[0]
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
