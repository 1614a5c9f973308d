// Package classify maps a day's health metrics to an emotional state.
//
// Classification is a pure function: identical inputs always produce the
// same state, and nothing is read from ambient configuration or stores.
package classify

import (
	"errors"
	"fmt"

	"github.com/symbi-app/symbi/internal/model"
)

var (
	// ErrInvalidThresholds means the threshold config violates 0 <= low < high.
	ErrInvalidThresholds = errors.New("invalid thresholds")

	// ErrInvalidMetric means the snapshot carries a malformed reading, such
	// as a negative step count. Invalid snapshots are never persisted.
	ErrInvalidMetric = errors.New("invalid metric")
)

// Default cutoffs for the optional metrics when the config leaves them zero.
const (
	DefaultLowSleepHours = 6.0
	DefaultLowHRV        = 30.0
)

// Thresholds configures the classifier. Low and High bound the resting band
// for daily steps; LowSleepHours and LowHRV are the cutoffs below which
// sleep or heart-rate variability count as unhealthy.
type Thresholds struct {
	Low           int     `yaml:"low"`
	High          int     `yaml:"high"`
	LowSleepHours float64 `yaml:"low_sleep_hours"`
	LowHRV        float64 `yaml:"low_hrv"`
}

// Validate checks the 0 <= Low < High invariant.
func (t Thresholds) Validate() error {
	if t.Low < 0 || t.Low >= t.High {
		return fmt.Errorf("%w: low=%d high=%d (want 0 <= low < high)", ErrInvalidThresholds, t.Low, t.High)
	}
	if t.LowSleepHours < 0 || t.LowHRV < 0 {
		return fmt.Errorf("%w: negative metric cutoff", ErrInvalidThresholds)
	}
	return nil
}

func (t Thresholds) lowSleep() float64 {
	if t.LowSleepHours == 0 {
		return DefaultLowSleepHours
	}
	return t.LowSleepHours
}

func (t Thresholds) lowHRV() float64 {
	if t.LowHRV == 0 {
		return DefaultLowHRV
	}
	return t.LowHRV
}

// Classify derives the emotional state for one metric snapshot.
//
// The steps-only base rule is: steps < Low → sad, steps <= High → resting,
// otherwise active. When sleep or HRV readings are present the base state
// may be upgraded:
//
//   - low HRV wins over everything: anxious when sleep is also short,
//     stressed otherwise
//   - short sleep (HRV healthy or absent) on a sad/resting day → tired
//   - healthy sleep and healthy HRV on a resting day → calm
//   - healthy sleep and healthy HRV on an active day → vibrant
//   - healthy sleep alone on a resting day → rested
func Classify(snap model.MetricSnapshot, t Thresholds) (model.EmotionalState, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	if snap.Steps < 0 {
		return "", fmt.Errorf("%w: negative steps %d", ErrInvalidMetric, snap.Steps)
	}
	if snap.SleepHours != nil && *snap.SleepHours < 0 {
		return "", fmt.Errorf("%w: negative sleep hours %v", ErrInvalidMetric, *snap.SleepHours)
	}
	if snap.HRV != nil && *snap.HRV < 0 {
		return "", fmt.Errorf("%w: negative hrv %v", ErrInvalidMetric, *snap.HRV)
	}

	base := model.StateResting
	switch {
	case snap.Steps < t.Low:
		base = model.StateSad
	case snap.Steps > t.High:
		base = model.StateActive
	}

	sleepLow := snap.SleepHours != nil && *snap.SleepHours < t.lowSleep()
	sleepHealthy := snap.SleepHours != nil && !sleepLow
	hrvLow := snap.HRV != nil && *snap.HRV < t.lowHRV()
	hrvHealthy := snap.HRV != nil && !hrvLow

	if hrvLow {
		if sleepLow {
			return model.StateAnxious, nil
		}
		return model.StateStressed, nil
	}

	switch {
	case sleepLow && base != model.StateActive:
		return model.StateTired, nil
	case sleepHealthy && hrvHealthy && base == model.StateResting:
		return model.StateCalm, nil
	case sleepHealthy && hrvHealthy && base == model.StateActive:
		return model.StateVibrant, nil
	case sleepHealthy && snap.HRV == nil && base == model.StateResting:
		return model.StateRested, nil
	}

	return base, nil
}
