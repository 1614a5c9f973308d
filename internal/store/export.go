package store

import (
	"context"

	"github.com/symbi-app/symbi/internal/model"
)

// Export bundles everything needed to move a pet between devices.
type Export struct {
	DailyStates []model.DailyStateEntry `json:"daily_states"`
	Evolutions  []model.EvolutionRecord `json:"evolutions"`
}

// ExportAll returns the full daily log and evolution list.
func (s *SQLiteStore) ExportAll(ctx context.Context) (*Export, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, state, source, steps, sleep_hours, hrv, recorded_at
		 FROM daily_states ORDER BY day ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &Export{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out.DailyStates = append(out.DailyStates, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out.Evolutions, err = s.ListEvolutions(ctx)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Import replays an export's daily states through the normal upsert path.
// Evolution records are not imported; levels are owned by this device's
// append-only log.
func (s *SQLiteStore) Import(ctx context.Context, ex *Export) (int, error) {
	imported := 0
	for _, e := range ex.DailyStates {
		_, err := s.RecordState(ctx, RecordParams{
			Day:        e.Day,
			State:      e.State,
			Source:     e.Source,
			Steps:      e.Steps,
			SleepHours: e.SleepHours,
			HRV:        e.HRV,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
