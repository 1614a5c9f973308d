package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/symbi-app/symbi/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_states (
		day         TEXT PRIMARY KEY,
		state       TEXT NOT NULL,
		source      TEXT NOT NULL DEFAULT 'rules',
		steps       INTEGER NOT NULL DEFAULT 0,
		sleep_hours REAL,
		hrv         REAL,
		recorded_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_daily_states_state ON daily_states(state);

	CREATE TABLE IF NOT EXISTS evolutions (
		id              TEXT PRIMARY KEY,
		level           INTEGER NOT NULL UNIQUE,
		triggered_at    TEXT NOT NULL,
		watermark       TEXT NOT NULL,
		image_ref       TEXT NOT NULL,
		dominant_states TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_evolutions_triggered ON evolutions(triggered_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) RecordState(ctx context.Context, p RecordParams) (*model.DailyStateEntry, error) {
	if _, err := model.ParseDay(string(p.Day)); err != nil {
		return nil, err
	}
	if !p.State.Valid() {
		return nil, fmt.Errorf("unknown state %q", p.State)
	}
	source := p.Source
	if source == "" {
		source = model.SourceRules
	}
	if !model.ValidSources[source] {
		return nil, fmt.Errorf("unknown source %q", source)
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_states (day, state, source, steps, sleep_hours, hrv, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(day) DO UPDATE SET
		   state = excluded.state,
		   source = excluded.source,
		   steps = excluded.steps,
		   sleep_hours = excluded.sleep_hours,
		   hrv = excluded.hrv,
		   recorded_at = excluded.recorded_at`,
		p.Day.String(), string(p.State), string(source), p.Steps,
		p.SleepHours, p.HRV, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("record state: %w", err)
	}

	return &model.DailyStateEntry{
		Day:        p.Day,
		State:      p.State,
		Source:     source,
		Steps:      p.Steps,
		SleepHours: p.SleepHours,
		HRV:        p.HRV,
		RecordedAt: now,
	}, nil
}

func (s *SQLiteStore) GetEntry(ctx context.Context, day model.Day) (*model.DailyStateEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT day, state, source, steps, sleep_hours, hrv, recorded_at
		 FROM daily_states WHERE day = ?`, day.String())

	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no entry for %s", ErrNotFound, day)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) GetRange(ctx context.Context, from, to model.Day) ([]model.DailyStateEntry, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, from, to)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT day, state, source, steps, sleep_hours, hrv, recorded_at
		 FROM daily_states WHERE day >= ? AND day <= ?
		 ORDER BY day ASC`, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.DailyStateEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) AppendEvolution(ctx context.Context, p AppendEvolutionParams) (*model.EvolutionRecord, error) {
	now := time.Now().UTC()
	id := s.newID()

	statesJSON, _ := json.Marshal(p.DominantStates)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var level int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(level), 0) FROM evolutions`).Scan(&level)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	level++

	_, err = tx.ExecContext(ctx,
		`INSERT INTO evolutions (id, level, triggered_at, watermark, image_ref, dominant_states)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, level, now.Format(time.RFC3339), p.Watermark.String(), p.ImageRef, string(statesJSON))
	if err != nil {
		return nil, fmt.Errorf("insert evolution: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.EvolutionRecord{
		ID:             id,
		Level:          level,
		TriggeredAt:    now,
		Watermark:      p.Watermark,
		ImageRef:       p.ImageRef,
		DominantStates: p.DominantStates,
	}, nil
}

func (s *SQLiteStore) ListEvolutions(ctx context.Context) ([]model.EvolutionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level, triggered_at, watermark, image_ref, dominant_states
		 FROM evolutions ORDER BY triggered_at ASC, level ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.EvolutionRecord
	for rows.Next() {
		r, err := scanEvolution(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) LatestEvolution(ctx context.Context) (*model.EvolutionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, level, triggered_at, watermark, image_ref, dominant_states
		 FROM evolutions ORDER BY level DESC LIMIT 1`)

	r, err := scanEvolution(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Reset wipes the daily log and evolution list. Irreversible; the CLI
// requires an explicit --force.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM daily_states`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM evolutions`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (model.DailyStateEntry, error) {
	var e model.DailyStateEntry
	var day, state, source, recordedAt string
	var sleepHours, hrv sql.NullFloat64

	err := row.Scan(&day, &state, &source, &e.Steps, &sleepHours, &hrv, &recordedAt)
	if err != nil {
		return e, err
	}

	e.Day = model.Day(day)
	e.State = model.EmotionalState(state)
	e.Source = model.StateSource(source)
	e.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
	if sleepHours.Valid {
		v := sleepHours.Float64
		e.SleepHours = &v
	}
	if hrv.Valid {
		v := hrv.Float64
		e.HRV = &v
	}
	return e, nil
}

func scanEvolution(row scanner) (model.EvolutionRecord, error) {
	var r model.EvolutionRecord
	var triggeredAt, watermark, statesJSON string

	err := row.Scan(&r.ID, &r.Level, &triggeredAt, &watermark, &r.ImageRef, &statesJSON)
	if err != nil {
		return r, err
	}

	r.TriggeredAt, _ = time.Parse(time.RFC3339, triggeredAt)
	r.Watermark = model.Day(watermark)
	json.Unmarshal([]byte(statesJSON), &r.DominantStates)
	return r, nil
}
