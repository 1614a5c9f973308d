// Package health supplies daily metric snapshots from a health data source.
//
// The companion mobile app exports HealthKit/Google Fit readings as a JSON
// file; ExportFileProvider reads it. Other providers can implement the same
// interface.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/symbi-app/symbi/internal/model"
)

// ErrUnavailable means no snapshot exists for the requested day. Not an
// escalated error; classification simply does not run for that day.
var ErrUnavailable = errors.New("health data unavailable")

// Provider fetches the metric snapshot for a calendar day.
type Provider interface {
	FetchMetrics(ctx context.Context, day model.Day) (model.MetricSnapshot, error)
}

// exportRecord is one day in the companion app's export file.
type exportRecord struct {
	Date       string   `json:"date"`
	Steps      int      `json:"steps"`
	SleepHours *float64 `json:"sleep_hours,omitempty"`
	HRV        *float64 `json:"hrv,omitempty"`
}

// ExportFileProvider reads snapshots from a JSON export file: an array of
// {date, steps, sleep_hours?, hrv?} records. The latest record for a date
// wins, matching the upsert semantics downstream.
type ExportFileProvider struct {
	Path string
}

// NewExportFileProvider creates a provider over the given export file.
func NewExportFileProvider(path string) *ExportFileProvider {
	return &ExportFileProvider{Path: path}
}

// FetchMetrics returns the snapshot for day, or ErrUnavailable when the
// file or the day is missing.
func (p *ExportFileProvider) FetchMetrics(_ context.Context, day model.Day) (model.MetricSnapshot, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.MetricSnapshot{}, fmt.Errorf("%w: no export at %s", ErrUnavailable, p.Path)
		}
		return model.MetricSnapshot{}, fmt.Errorf("read export: %w", err)
	}

	var records []exportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return model.MetricSnapshot{}, fmt.Errorf("parse export %s: %w", p.Path, err)
	}

	var found *exportRecord
	for i := range records {
		d, err := model.ParseDay(records[i].Date)
		if err != nil {
			continue
		}
		if d == day {
			found = &records[i]
		}
	}
	if found == nil {
		return model.MetricSnapshot{}, fmt.Errorf("%w: no record for %s", ErrUnavailable, day)
	}

	return model.MetricSnapshot{
		Day:        day,
		Steps:      found.Steps,
		SleepHours: found.SleepHours,
		HRV:        found.HRV,
	}, nil
}
