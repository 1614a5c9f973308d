package model

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-01-15")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2025-01-15" {
		t.Errorf("expected 2025-01-15, got %s", d)
	}

	for _, bad := range []string{"", "2025-13-01", "15/01/2025", "2025-1-5", "yesterday"} {
		if _, err := ParseDay(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestDayPrevAndSub(t *testing.T) {
	d, _ := ParseDay("2025-03-01")
	if d.Prev() != "2025-02-28" {
		t.Errorf("expected 2025-02-28, got %s", d.Prev())
	}
	if d.Sub(0) != d {
		t.Errorf("Sub(0) should be identity")
	}
	if d.Sub(29) != "2025-01-31" {
		t.Errorf("expected 2025-01-31, got %s", d.Sub(29))
	}
}

func TestDayOrdering(t *testing.T) {
	a, _ := ParseDay("2024-12-31")
	b, _ := ParseDay("2025-01-01")
	if !a.Before(b) || b.Before(a) {
		t.Error("lexical order must match chronological order")
	}
	if !b.After(a) {
		t.Error("expected b after a")
	}
}

func TestDayOf(t *testing.T) {
	ts := time.Date(2025, 6, 7, 23, 59, 0, 0, time.UTC)
	if DayOf(ts) != "2025-06-07" {
		t.Errorf("expected 2025-06-07, got %s", DayOf(ts))
	}
}

func TestStateValidity(t *testing.T) {
	if !StateActive.Valid() || !StateAnxious.Valid() {
		t.Error("known states must validate")
	}
	if EmotionalState("grumpy").Valid() {
		t.Error("unknown state must not validate")
	}
}
