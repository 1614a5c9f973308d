package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string       `json:"db_path"`
	DBSizeBytes int64        `json:"db_size_bytes"`
	DaysTracked int          `json:"days_tracked"`
	FirstDay    string       `json:"first_day,omitempty"`
	LastDay     string       `json:"last_day,omitempty"`
	Evolutions  int          `json:"evolutions"`
	States      []StateStats `json:"states"`
}

// StateStats holds per-state day counts.
type StateStats struct {
	State string `json:"state"`
	Days  int    `json:"days"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM daily_states`).Scan(&st.DaysTracked)
	s.db.QueryRowContext(ctx, `SELECT COALESCE(MIN(day), ''), COALESCE(MAX(day), '') FROM daily_states`).
		Scan(&st.FirstDay, &st.LastDay)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evolutions`).Scan(&st.Evolutions)

	rows, err := s.db.QueryContext(ctx, `
		SELECT state, COUNT(*) as cnt
		FROM daily_states
		GROUP BY state ORDER BY cnt DESC, state ASC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ss StateStats
		rows.Scan(&ss.State, &ss.Days)
		st.States = append(st.States, ss)
	}

	return st, nil
}
