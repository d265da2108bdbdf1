package stress

// Level is the qualitative stress bucket derived from the numeric score.
type Level string

const (
	LevelNoMeetings Level = "No Meetings"
	LevelLow        Level = "Low"
	LevelModerate   Level = "Moderate"
	LevelHigh       Level = "High"
	LevelCritical   Level = "Critical"
)

// Components is the named breakdown of the weighted sub-scores. The additive
// components (base through overload) sum to the pre-adjustment load; the
// factors record the multiplicative adjustments applied before capping.
type Components struct {
	BaseMeetingStress      float64 `json:"base_meeting_stress"`
	BackToBackPenalty      float64 `json:"back_to_back_penalty"`
	LunchDisruptionPenalty float64 `json:"lunch_disruption_penalty"`
	LongMeetingPenalty     float64 `json:"long_meeting_penalty"`
	OverloadPenalty        float64 `json:"overload_penalty"`

	DifficultyMultiplier float64 `json:"difficulty_multiplier"`
	CircadianFactor      float64 `json:"circadian_factor"`
	CarryoverFactor      float64 `json:"carryover_factor"`

	MeetingCount      int     `json:"meeting_count"`
	TotalMeetingHours float64 `json:"total_meeting_hours"`
	// ExcludedBreaks counts events dropped from meeting accounting as
	// personal lunch/breaks.
	ExcludedBreaks int `json:"excluded_breaks"`
}

// MeetingAnalysis carries summary statistics for display alongside the score.
type MeetingAnalysis struct {
	TotalMeetings         int     `json:"total_meetings"`
	TotalHours            float64 `json:"total_hours"`
	BackToBackTransitions int     `json:"back_to_back_transitions"`
	LunchMeetings         int     `json:"lunch_meetings"`
	HighStressMeetings    int     `json:"high_stress_meetings"`
	FirstMeeting          string  `json:"first_meeting,omitempty"`
	LastMeeting           string  `json:"last_meeting,omitempty"`
	LongestMeetingMinutes int     `json:"longest_meeting_minutes"`
}

// Result is the full outcome of scoring one day. It is a plain value, safe
// to serialize directly to JSON.
type Result struct {
	Score           float64         `json:"daily_stress_score"`
	Level           Level           `json:"stress_level"`
	Components      Components      `json:"components"`
	Recommendations []string        `json:"recommendations"`
	MeetingAnalysis MeetingAnalysis `json:"meeting_analysis"`
}
