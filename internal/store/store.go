// Package store provides the Symbi persistence interface and SQLite
// implementation: the daily state log and the append-only evolution list.
package store

import (
	"context"
	"errors"

	"github.com/symbi-app/symbi/internal/model"
)

var (
	// ErrNotFound means no entry exists for the requested day.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRange means a range query with start after end.
	ErrInvalidRange = errors.New("invalid range")
)

// RecordParams holds parameters for recording a day's state.
type RecordParams struct {
	Day        model.Day
	State      model.EmotionalState
	Source     model.StateSource
	Steps      int
	SleepHours *float64
	HRV        *float64
}

// AppendEvolutionParams holds parameters for committing an evolution.
type AppendEvolutionParams struct {
	Watermark      model.Day
	ImageRef       string
	DominantStates []model.StateCount
}

// Store defines the Symbi storage interface.
type Store interface {
	// RecordState upserts the state for one day. Last write wins; at most
	// one entry exists per day.
	RecordState(ctx context.Context, p RecordParams) (*model.DailyStateEntry, error)

	// GetEntry retrieves the entry for one day, or ErrNotFound.
	GetEntry(ctx context.Context, day model.Day) (*model.DailyStateEntry, error)

	// GetRange returns entries between from and to inclusive, ascending by
	// day. Fails with ErrInvalidRange when from is after to.
	GetRange(ctx context.Context, from, to model.Day) ([]model.DailyStateEntry, error)

	// AppendEvolution commits a new evolution record at the next level.
	AppendEvolution(ctx context.Context, p AppendEvolutionParams) (*model.EvolutionRecord, error)

	// ListEvolutions returns all evolution records ordered by trigger time.
	ListEvolutions(ctx context.Context) ([]model.EvolutionRecord, error)

	// LatestEvolution returns the most recent evolution record, or nil when
	// none exists.
	LatestEvolution(ctx context.Context) (*model.EvolutionRecord, error)

	// Close closes the store.
	Close() error
}
