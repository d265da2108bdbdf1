package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ICSSource describes a single ICS subscription feed.
type ICSSource struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Weights holds the additive scoring constants of the stress model. All
// values are plain stress points (or points-per-unit) so the model can be
// retuned from the config file without touching the engine.
type Weights struct {
	// HourlyWeight is stress points per hour of meetings.
	HourlyWeight float64 `yaml:"hourly_weight" json:"hourly_weight"`
	// FrequencyWeight is stress points per meeting beyond the first.
	FrequencyWeight float64 `yaml:"frequency_weight" json:"frequency_weight"`
	// BackToBack is the full penalty for a gap of at most 10 minutes.
	// Gaps between 10 and 30 minutes incur half of it.
	BackToBack float64 `yaml:"back_to_back" json:"back_to_back"`
	// LunchDisruption is the penalty per meeting overlapping the lunch window.
	LunchDisruption float64 `yaml:"lunch_disruption" json:"lunch_disruption"`
	// LongMeeting is the penalty per started 30-minute increment beyond the
	// long-meeting threshold.
	LongMeeting float64 `yaml:"long_meeting" json:"long_meeting"`
	// OverloadPerMeeting is the penalty per meeting above the daily count limit.
	OverloadPerMeeting float64 `yaml:"overload_per_meeting" json:"overload_per_meeting"`
	// OverloadPerHour is the penalty per hour above the daily hours limit.
	OverloadPerHour float64 `yaml:"overload_per_hour" json:"overload_per_hour"`
}

// Multipliers holds the per-meeting difficulty scalars.
type Multipliers struct {
	ParticipantsSmall float64 `yaml:"participants_small" json:"participants_small"` // <= 2 people
	ParticipantsGroup float64 `yaml:"participants_group" json:"participants_group"` // <= 5 people
	ParticipantsLarge float64 `yaml:"participants_large" json:"participants_large"` // 6+
	ContentHigh       float64 `yaml:"content_high" json:"content_high"`
	ContentLow        float64 `yaml:"content_low" json:"content_low"`
	SentimentPositive float64 `yaml:"sentiment_positive" json:"sentiment_positive"`
	SentimentNegative float64 `yaml:"sentiment_negative" json:"sentiment_negative"`
}

// Keywords holds the word lists consulted by the normalizer and the scoring
// engine. Matching is always case-insensitive substring search; list order is
// irrelevant within a list, but the engines consult lists in a fixed priority
// order.
type Keywords struct {
	HighStress []string `yaml:"high_stress" json:"high_stress"`
	LowStress  []string `yaml:"low_stress" json:"low_stress"`

	// Positive / Negative feed the fallback sentiment scorer.
	Positive []string `yaml:"positive" json:"positive"`
	Negative []string `yaml:"negative" json:"negative"`

	// Lunch marks personal lunch/break events excluded from meeting accounting.
	Lunch []string `yaml:"lunch" json:"lunch"`

	// Type-inference lists, consulted in this priority order.
	Meeting   []string `yaml:"meeting" json:"meeting"`
	Interview []string `yaml:"interview" json:"interview"`
	Training  []string `yaml:"training" json:"training"`
	Break     []string `yaml:"break" json:"break"`
	Focus     []string `yaml:"focus" json:"focus"`
	Travel    []string `yaml:"travel" json:"travel"`
}

// Scoring bundles everything the stress engine needs: weights, multipliers,
// structural limits, keyword tables, and the circadian adjustment maps.
type Scoring struct {
	Weights     Weights     `yaml:"weights" json:"weights"`
	Multipliers Multipliers `yaml:"multipliers" json:"multipliers"`
	Keywords    Keywords    `yaml:"keywords" json:"keywords"`

	// LunchStartHour / LunchEndHour bound the protected lunch window.
	LunchStartHour int `yaml:"lunch_start_hour" json:"lunch_start_hour"`
	LunchEndHour   int `yaml:"lunch_end_hour" json:"lunch_end_hour"`

	// LongMeetingMinutes is the threshold beyond which a meeting is "long".
	LongMeetingMinutes int `yaml:"long_meeting_minutes" json:"long_meeting_minutes"`

	// DailyMeetingLimit / DailyHourLimit define overload.
	DailyMeetingLimit int     `yaml:"daily_meeting_limit" json:"daily_meeting_limit"`
	DailyHourLimit    float64 `yaml:"daily_hour_limit" json:"daily_hour_limit"`

	// Load-tier score ceilings. A light day cannot exceed LightDayCap even if
	// a single penalty explodes, and so on.
	LightDayCap    float64 `yaml:"light_day_cap" json:"light_day_cap"`
	ModerateDayCap float64 `yaml:"moderate_day_cap" json:"moderate_day_cap"`
	HeavyDayCap    float64 `yaml:"heavy_day_cap" json:"heavy_day_cap"`

	// CircadianByHour maps average meeting start hour to a fatigue factor.
	// Hours absent from the map count as 1.0.
	CircadianByHour map[int]float64 `yaml:"circadian_by_hour" json:"circadian_by_hour"`

	// DayOfWeek maps lowercase weekday names to an adjustment factor.
	DayOfWeek map[string]float64 `yaml:"day_of_week" json:"day_of_week"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API server.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used when interpreting zone-less input
	// timestamps (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *") used
	// for periodic ICS feed refresh in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir is where the ICS fetcher keeps its conditional-request cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSSource `yaml:"ics" json:"ics"`

	// Scoring holds the stress model tables.
	Scoring Scoring `yaml:"scoring" json:"scoring"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultScoring returns the calibrated scoring tables. These are the tuning
// values the rest of the system was validated against; they are defaults, not
// contracts.
func DefaultScoring() Scoring {
	return Scoring{
		Weights: Weights{
			HourlyWeight:       8,
			FrequencyWeight:    4,
			BackToBack:         10,
			LunchDisruption:    10,
			LongMeeting:        5,
			OverloadPerMeeting: 6,
			OverloadPerHour:    5,
		},
		Multipliers: Multipliers{
			ParticipantsSmall: 1.0,
			ParticipantsGroup: 1.3,
			ParticipantsLarge: 1.6,
			ContentHigh:       1.5,
			ContentLow:        0.7,
			SentimentPositive: 0.8,
			SentimentNegative: 1.3,
		},
		Keywords: Keywords{
			HighStress: []string{
				"urgent", "crisis", "deadline", "review", "performance",
				"conflict", "escalation", "emergency", "critical", "budget",
				"layoff", "restructure", "termination", "firing", "discipline",
			},
			LowStress: []string{
				"social", "celebration", "team building", "coffee", "informal",
				"casual", "fun", "birthday", "farewell", "welcome",
				"happy hour", "game", "party",
			},
			Positive: []string{"celebration", "success", "achievement", "fun", "social"},
			Negative: []string{"problem", "issue", "urgent", "crisis", "conflict"},
			Lunch:    []string{"lunch", "break", "meal", "dinner", "breakfast"},

			Meeting:   []string{"meeting", "call", "conference", "standup", "sync"},
			Interview: []string{"interview", "candidate"},
			Training:  []string{"training", "workshop", "seminar"},
			Break:     []string{"break", "lunch", "coffee"},
			Focus:     []string{"focus", "deep work", "coding"},
			Travel:    []string{"travel", "commute"},
		},
		LunchStartHour:     13,
		LunchEndHour:       14,
		LongMeetingMinutes: 90,
		DailyMeetingLimit:  4,
		DailyHourLimit:     4,
		LightDayCap:        40,
		ModerateDayCap:     70,
		HeavyDayCap:        100,
		CircadianByHour: map[int]float64{
			7: 1.4, 8: 1.4,
			9: 1.0, 10: 1.0,
			11: 1.3, 12: 1.3, 13: 1.3,
			14: 1.0, 15: 1.0, 16: 1.0,
			17: 1.4, 18: 1.4,
			19: 1.6, 20: 1.6, 21: 1.6,
		},
		DayOfWeek: map[string]float64{
			"monday": 1.2,
			"friday": 0.9,
		},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Local",
		RefreshCron: "*/15 * * * *",
		CacheDir:    "./var/ics-cache",
		ICS:         []ICSSource{},
		Scoring:     DefaultScoring(),
		BasicAuth:   nil,
	}
}

// Normalize fills missing/zero values with defaults so partially-filled
// configs (hand-edited or from older versions) still behave correctly.
// Weight-table gaps are a configuration error class; they are repaired here
// at load time, never at scoring time.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.ICS == nil {
		c.ICS = []ICSSource{}
	}
	c.Scoring.normalize()
}

func (s *Scoring) normalize() {
	def := DefaultScoring()

	if s.Weights == (Weights{}) {
		s.Weights = def.Weights
	}
	if s.Multipliers == (Multipliers{}) {
		s.Multipliers = def.Multipliers
	}
	if s.Keywords.HighStress == nil {
		s.Keywords.HighStress = def.Keywords.HighStress
	}
	if s.Keywords.LowStress == nil {
		s.Keywords.LowStress = def.Keywords.LowStress
	}
	if s.Keywords.Positive == nil {
		s.Keywords.Positive = def.Keywords.Positive
	}
	if s.Keywords.Negative == nil {
		s.Keywords.Negative = def.Keywords.Negative
	}
	if s.Keywords.Lunch == nil {
		s.Keywords.Lunch = def.Keywords.Lunch
	}
	if s.Keywords.Meeting == nil {
		s.Keywords.Meeting = def.Keywords.Meeting
	}
	if s.Keywords.Interview == nil {
		s.Keywords.Interview = def.Keywords.Interview
	}
	if s.Keywords.Training == nil {
		s.Keywords.Training = def.Keywords.Training
	}
	if s.Keywords.Break == nil {
		s.Keywords.Break = def.Keywords.Break
	}
	if s.Keywords.Focus == nil {
		s.Keywords.Focus = def.Keywords.Focus
	}
	if s.Keywords.Travel == nil {
		s.Keywords.Travel = def.Keywords.Travel
	}
	if s.LunchStartHour == 0 && s.LunchEndHour == 0 {
		s.LunchStartHour = def.LunchStartHour
		s.LunchEndHour = def.LunchEndHour
	}
	if s.LongMeetingMinutes <= 0 {
		s.LongMeetingMinutes = def.LongMeetingMinutes
	}
	if s.DailyMeetingLimit <= 0 {
		s.DailyMeetingLimit = def.DailyMeetingLimit
	}
	if s.DailyHourLimit <= 0 {
		s.DailyHourLimit = def.DailyHourLimit
	}
	if s.LightDayCap <= 0 {
		s.LightDayCap = def.LightDayCap
	}
	if s.ModerateDayCap <= 0 {
		s.ModerateDayCap = def.ModerateDayCap
	}
	if s.HeavyDayCap <= 0 {
		s.HeavyDayCap = def.HeavyDayCap
	}
	if s.CircadianByHour == nil {
		s.CircadianByHour = def.CircadianByHour
	}
	if s.DayOfWeek == nil {
		s.DayOfWeek = def.DayOfWeek
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write a
//     default config with 0600 perms, and return the default config.
//   - If the file exists: read YAML, unmarshal, and normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".mindsync-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Clean up temp file on any error path.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Location resolves the configured timezone, falling back to time.Local on
// failure.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
