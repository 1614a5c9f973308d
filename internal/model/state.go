// Package model defines the core Symbi data types.
package model

import "time"

// EmotionalState is the discrete mood tag assigned to one calendar day.
type EmotionalState string

const (
	StateSad      EmotionalState = "sad"
	StateResting  EmotionalState = "resting"
	StateActive   EmotionalState = "active"
	StateVibrant  EmotionalState = "vibrant"
	StateCalm     EmotionalState = "calm"
	StateTired    EmotionalState = "tired"
	StateStressed EmotionalState = "stressed"
	StateAnxious  EmotionalState = "anxious"
	StateRested   EmotionalState = "rested"
)

// ValidStates is the closed set of emotional states.
var ValidStates = map[EmotionalState]bool{
	StateSad:      true,
	StateResting:  true,
	StateActive:   true,
	StateVibrant:  true,
	StateCalm:     true,
	StateTired:    true,
	StateStressed: true,
	StateAnxious:  true,
	StateRested:   true,
}

// Valid reports whether s is a known emotional state.
func (s EmotionalState) Valid() bool { return ValidStates[s] }

// PositiveDefaults are the states that count toward an evolution streak
// unless the config overrides the set.
var PositiveDefaults = map[EmotionalState]bool{
	StateActive:  true,
	StateVibrant: true,
	StateRested:  true,
}

// StateSource tags how a day's state was produced.
type StateSource string

const (
	SourceRules  StateSource = "rules"
	SourceAI     StateSource = "ai"
	SourceManual StateSource = "manual"
)

// ValidSources are the allowed state sources.
var ValidSources = map[StateSource]bool{
	SourceRules:  true,
	SourceAI:     true,
	SourceManual: true,
}

// MetricSnapshot is one day's health reading. SleepHours and HRV are nil
// when the metric was not measured that day.
type MetricSnapshot struct {
	Day        Day      `json:"day"`
	Steps      int      `json:"steps"`
	SleepHours *float64 `json:"sleep_hours,omitempty"`
	HRV        *float64 `json:"hrv,omitempty"`
}

// DailyStateEntry is the recorded classification for one calendar day.
// At most one entry exists per day; a later record for the same day
// replaces the earlier one entirely.
type DailyStateEntry struct {
	Day        Day            `json:"day"`
	State      EmotionalState `json:"state"`
	Source     StateSource    `json:"source"`
	Steps      int            `json:"steps"`
	SleepHours *float64       `json:"sleep_hours,omitempty"`
	HRV        *float64       `json:"hrv,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// EvolutionProgress is the derived streak status, recomputed from the daily
// log on every check.
type EvolutionProgress struct {
	ConsecutivePositiveDays int  `json:"consecutive_positive_days"`
	RequiredDays            int  `json:"required_days"`
	Eligible                bool `json:"eligible"`
}

// StateCount is one state's share of the qualifying window.
type StateCount struct {
	State EmotionalState `json:"state"`
	Count int            `json:"count"`
}

// EvolutionRecord is one committed evolution. Records are append-only and
// immutable; Watermark is the day the streak was consumed — days at or
// before it never count toward the next streak.
type EvolutionRecord struct {
	ID             string       `json:"id"`
	Level          int          `json:"level"`
	TriggeredAt    time.Time    `json:"triggered_at"`
	Watermark      Day          `json:"watermark"`
	ImageRef       string       `json:"image_ref"`
	DominantStates []StateCount `json:"dominant_states"`
}
