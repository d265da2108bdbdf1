package stress

// Score thresholds for the qualitative levels.
const (
	lowMax      = 25
	moderateMax = 50
	highMax     = 75
)

func (e *Engine) classify(score float64) Level {
	switch {
	case score <= lowMax:
		return LevelLow
	case score <= moderateMax:
		return LevelModerate
	case score <= highMax:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// levelMenus are the fixed recommendation menus per level.
var levelMenus = map[Level][]string{
	LevelLow: {
		"Great! Your meeting load is manageable.",
		"Consider using this light day to tackle focused work.",
		"Maybe offer to help colleagues with their workload.",
	},
	LevelModerate: {
		"Your meeting load is moderate. Stay organized.",
		"Take short breaks between meetings when possible.",
		"Prepare meeting agendas to make sessions more efficient.",
	},
	LevelHigh: {
		"Heavy meeting day detected. Prioritize ruthlessly.",
		"Cancel or delegate non-essential meetings.",
		"Block 15-minute breaks between back-to-back meetings.",
		"Consider declining lunch meetings to preserve energy.",
	},
	LevelCritical: {
		"CRITICAL: This schedule may lead to burnout.",
		"Immediately reschedule or cancel non-urgent meetings.",
		"Block recovery time after high-stress meetings.",
		"Speak with your manager about workload management.",
		"Take micro-breaks (2-3 minutes) between every meeting.",
	},
}

// backToBackWarnThreshold is the penalty level above which the schedule gets
// an explicit buffer-time warning.
const backToBackWarnThreshold = 20

// recommendations returns the level's fixed menu followed by warnings
// triggered by individual components.
func (e *Engine) recommendations(level Level, c Components) []string {
	recs := make([]string, 0, 8)
	recs = append(recs, levelMenus[level]...)

	if c.BackToBackPenalty > backToBackWarnThreshold {
		recs = append(recs, "Your meetings are tightly packed. Add buffer time between them.")
	}
	if c.LunchDisruptionPenalty > 0 {
		recs = append(recs, "Protect your lunch hour. Move meetings out of the 1-2 PM window.")
	}
	if c.OverloadPenalty > 0 {
		recs = append(recs, "Meeting overload detected. Decline or shorten low-value meetings.")
	}
	return recs
}
