// Package streak computes evolution eligibility from the daily state log.
package streak

import (
	"errors"
	"fmt"
	"sort"

	"github.com/symbi-app/symbi/internal/model"
)

// ErrInvalidRequiredDays means the streak requirement is not a positive count.
var ErrInvalidRequiredDays = errors.New("required days must be positive")

// Params holds the inputs for one progress computation. All data is passed
// in explicitly; the scan never reads stores or clocks.
type Params struct {
	// Entries is the daily log, ascending by day. Only the trailing window
	// matters; older entries are ignored by the backward scan.
	Entries []model.DailyStateEntry

	// Today anchors the scan.
	Today model.Day

	// Positive is the set of states that extend a streak. Empty means
	// model.PositiveDefaults.
	Positive map[model.EmotionalState]bool

	// RequiredDays is the streak length that grants eligibility.
	RequiredDays int

	// Floor is the watermark of the last committed evolution. Days at or
	// before it never count, so a consumed streak cannot re-trigger. Empty
	// means no floor.
	Floor model.Day
}

// ComputeProgress walks backward from today, one day at a time, counting
// unbroken positive days. A day with no entry breaks the streak, as does a
// non-positive state. The scan stops early once the requirement is met.
func ComputeProgress(p Params) (model.EvolutionProgress, error) {
	if p.RequiredDays <= 0 {
		return model.EvolutionProgress{}, fmt.Errorf("%w: %d", ErrInvalidRequiredDays, p.RequiredDays)
	}

	positive := p.Positive
	if len(positive) == 0 {
		positive = model.PositiveDefaults
	}

	byDay := make(map[model.Day]model.EmotionalState, len(p.Entries))
	for _, e := range p.Entries {
		byDay[e.Day] = e.State
	}

	progress := model.EvolutionProgress{RequiredDays: p.RequiredDays}
	for day := p.Today; progress.ConsecutivePositiveDays < p.RequiredDays; day = day.Prev() {
		if p.Floor != "" && !day.After(p.Floor) {
			break
		}
		state, ok := byDay[day]
		if !ok || !positive[state] {
			break
		}
		progress.ConsecutivePositiveDays++
	}

	progress.Eligible = progress.ConsecutivePositiveDays >= p.RequiredDays
	return progress, nil
}

// DominantStates returns the state distribution over the window of `days`
// days ending at today, counts descending, ties broken by state name. Days
// with no entry are skipped.
func DominantStates(entries []model.DailyStateEntry, today model.Day, days int) []model.StateCount {
	byDay := make(map[model.Day]model.EmotionalState, len(entries))
	for _, e := range entries {
		byDay[e.Day] = e.State
	}

	counts := make(map[model.EmotionalState]int)
	for i := 0; i < days; i++ {
		if state, ok := byDay[today.Sub(i)]; ok {
			counts[state]++
		}
	}

	out := make([]model.StateCount, 0, len(counts))
	for state, n := range counts {
		out = append(out, model.StateCount{State: state, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].State < out[j].State
	})
	return out
}
