package classify

import (
	"errors"
	"testing"

	"github.com/symbi-app/symbi/internal/model"
)

var testThresholds = Thresholds{Low: 2000, High: 8000}

func ptr(v float64) *float64 { return &v }

func classifySteps(t *testing.T, steps int) model.EmotionalState {
	t.Helper()
	state, err := Classify(model.MetricSnapshot{Day: "2025-01-01", Steps: steps}, testThresholds)
	if err != nil {
		t.Fatalf("classify %d steps: %v", steps, err)
	}
	return state
}

func TestBaseRule(t *testing.T) {
	cases := []struct {
		steps int
		want  model.EmotionalState
	}{
		{0, model.StateSad},
		{500, model.StateSad},
		{1999, model.StateSad},
		{2000, model.StateResting},
		{3000, model.StateResting},
		{8000, model.StateResting},
		{8001, model.StateActive},
		{9000, model.StateActive},
		{30000, model.StateActive},
	}
	for _, c := range cases {
		if got := classifySteps(t, c.steps); got != c.want {
			t.Errorf("steps=%d: expected %s, got %s", c.steps, c.want, got)
		}
	}
}

// More steps never yields a less positive base state.
func TestBaseRuleMonotonic(t *testing.T) {
	rank := map[model.EmotionalState]int{
		model.StateSad:     0,
		model.StateResting: 1,
		model.StateActive:  2,
	}
	prev := -1
	for steps := 0; steps <= 20000; steps += 250 {
		r := rank[classifySteps(t, steps)]
		if r < prev {
			t.Fatalf("classification regressed at steps=%d", steps)
		}
		prev = r
	}
}

func TestLowHRVUpgrades(t *testing.T) {
	// Low HRV alone → stressed, regardless of base state.
	snap := model.MetricSnapshot{Day: "2025-01-01", Steps: 9000, HRV: ptr(20)}
	state, err := Classify(snap, testThresholds)
	if err != nil {
		t.Fatal(err)
	}
	if state != model.StateStressed {
		t.Errorf("expected stressed, got %s", state)
	}

	// Low HRV plus short sleep → anxious.
	snap.SleepHours = ptr(4.5)
	state, _ = Classify(snap, testThresholds)
	if state != model.StateAnxious {
		t.Errorf("expected anxious, got %s", state)
	}
}

func TestHealthyUpgrades(t *testing.T) {
	cases := []struct {
		name string
		snap model.MetricSnapshot
		want model.EmotionalState
	}{
		{"calm", model.MetricSnapshot{Steps: 5000, SleepHours: ptr(7.5), HRV: ptr(55)}, model.StateCalm},
		{"vibrant", model.MetricSnapshot{Steps: 12000, SleepHours: ptr(8), HRV: ptr(60)}, model.StateVibrant},
		{"rested", model.MetricSnapshot{Steps: 5000, SleepHours: ptr(8)}, model.StateRested},
		{"tired short sleep", model.MetricSnapshot{Steps: 5000, SleepHours: ptr(4)}, model.StateTired},
		{"tired sad day", model.MetricSnapshot{Steps: 100, SleepHours: ptr(4)}, model.StateTired},
		{"active short sleep keeps base", model.MetricSnapshot{Steps: 12000, SleepHours: ptr(4)}, model.StateActive},
	}
	for _, c := range cases {
		c.snap.Day = "2025-01-01"
		state, err := Classify(c.snap, testThresholds)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if state != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, state)
		}
	}
}

func TestDeterministic(t *testing.T) {
	snap := model.MetricSnapshot{Day: "2025-01-01", Steps: 7000, SleepHours: ptr(6.5), HRV: ptr(45)}
	first, err := Classify(snap, testThresholds)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, _ := Classify(snap, testThresholds)
		if again != first {
			t.Fatalf("classification not deterministic: %s then %s", first, again)
		}
	}
}

func TestInvalidMetric(t *testing.T) {
	_, err := Classify(model.MetricSnapshot{Day: "2025-01-01", Steps: -1}, testThresholds)
	if !errors.Is(err, ErrInvalidMetric) {
		t.Errorf("expected ErrInvalidMetric, got %v", err)
	}

	_, err = Classify(model.MetricSnapshot{Day: "2025-01-01", Steps: 100, SleepHours: ptr(-2)}, testThresholds)
	if !errors.Is(err, ErrInvalidMetric) {
		t.Errorf("expected ErrInvalidMetric for negative sleep, got %v", err)
	}
}

func TestInvalidThresholds(t *testing.T) {
	cases := []Thresholds{
		{Low: 8000, High: 2000},
		{Low: 5000, High: 5000},
		{Low: -1, High: 100},
	}
	for _, c := range cases {
		if _, err := Classify(model.MetricSnapshot{Day: "2025-01-01", Steps: 100}, c); !errors.Is(err, ErrInvalidThresholds) {
			t.Errorf("thresholds %+v: expected ErrInvalidThresholds, got %v", c, err)
		}
	}
}
