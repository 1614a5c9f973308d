package evolution

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/symbi-app/symbi/internal/model"
	"github.com/symbi-app/symbi/internal/store"
)

const today = model.Day("2025-02-01")

// fakeGenerator scripts the image collaborator.
type fakeGenerator struct {
	err     error
	calls   int
	started chan struct{} // closed when a call begins, when non-nil
	release chan struct{} // call blocks until closed, when non-nil
}

func (f *fakeGenerator) GenerateAppearance(ctx context.Context, prompt string, level int) (string, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("appearances/level_%03d.png", level), nil
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedPositiveDays(t *testing.T, s *store.SQLiteStore, end model.Day, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		_, err := s.RecordState(ctx, store.RecordParams{
			Day:   end.Sub(i),
			State: model.StateActive,
			Steps: 10000,
		})
		require.NoError(t, err)
	}
}

func newOrchestrator(s *store.SQLiteStore, gen *fakeGenerator, requiredDays int) *Orchestrator {
	return New(s, gen, Config{RequiredDays: requiredDays}, zap.NewNop())
}

func TestTriggerNotEligible(t *testing.T) {
	s := newTestStore(t)
	seedPositiveDays(t, s, today, 10)
	gen := &fakeGenerator{}
	orch := newOrchestrator(s, gen, 30)

	result, err := orch.Trigger(context.Background(), today)
	require.NoError(t, err)
	assert.False(t, result.Evolved)
	assert.Nil(t, result.Record)
	assert.Equal(t, 10, result.Progress.ConsecutivePositiveDays)
	assert.Zero(t, gen.calls, "generator must not be called when not eligible")
}

func TestTriggerCommitsEvolution(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedPositiveDays(t, s, today, 30)
	orch := newOrchestrator(s, &fakeGenerator{}, 30)

	result, err := orch.Trigger(ctx, today)
	require.NoError(t, err)
	require.True(t, result.Evolved)
	require.NotNil(t, result.Record)
	assert.Equal(t, 1, result.Record.Level)
	assert.Equal(t, today, result.Record.Watermark)
	assert.NotEmpty(t, result.Record.DominantStates)
	assert.Equal(t, model.StateActive, result.Record.DominantStates[0].State)

	latest, err := s.LatestEvolution(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 1, latest.Level)
}

// A committed evolution's watermark stops the same streak from counting
// again; new positive days accrue from scratch.
func TestWatermarkResetsProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedPositiveDays(t, s, today, 30)
	orch := newOrchestrator(s, &fakeGenerator{}, 30)

	result, err := orch.Trigger(ctx, today)
	require.NoError(t, err)
	require.True(t, result.Evolved)

	progress, err := orch.Progress(ctx, today)
	require.NoError(t, err)
	assert.Zero(t, progress.ConsecutivePositiveDays)
	assert.False(t, progress.Eligible)

	// Five fresh positive days after the watermark count again.
	seedPositiveDays(t, s, today.Sub(-5), 5)
	progress, err = orch.Progress(ctx, today.Sub(-5))
	require.NoError(t, err)
	assert.Equal(t, 5, progress.ConsecutivePositiveDays)
}

// Generation failure must not consume eligibility: no record is written and
// an immediate retry succeeds.
func TestFailedGenerationPreservesEligibility(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedPositiveDays(t, s, today, 30)
	gen := &fakeGenerator{err: errors.New("upstream 503")}
	orch := newOrchestrator(s, gen, 30)

	_, err := orch.Trigger(ctx, today)
	require.ErrorIs(t, err, ErrGenerationFailed)

	latest, err := s.LatestEvolution(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest, "no record may be written on failure")

	progress, err := orch.Progress(ctx, today)
	require.NoError(t, err)
	assert.True(t, progress.Eligible, "eligibility must survive a failed attempt")

	gen.err = nil
	result, err := orch.Trigger(ctx, today)
	require.NoError(t, err)
	assert.True(t, result.Evolved)
}

func TestGenerationTimeout(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedPositiveDays(t, s, today, 30)
	gen := &fakeGenerator{release: make(chan struct{})} // never released; ctx deadline fires
	orch := New(s, gen, Config{RequiredDays: 30, GenerationTimeout: 20 * time.Millisecond}, zap.NewNop())

	_, err := orch.Trigger(ctx, today)
	require.ErrorIs(t, err, ErrGenerationFailed)

	progress, err := orch.Progress(ctx, today)
	require.NoError(t, err)
	assert.True(t, progress.Eligible, "timeout is treated like any generation failure")
}

func TestSingleInFlightEvolution(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedPositiveDays(t, s, today, 30)

	started := make(chan struct{})
	release := make(chan struct{})
	gen := &fakeGenerator{started: started, release: release}
	orch := newOrchestrator(s, gen, 30)

	done := make(chan error, 1)
	go func() {
		_, err := orch.Trigger(ctx, today)
		done <- err
	}()

	<-started
	_, err := orch.Trigger(ctx, today)
	require.ErrorIs(t, err, ErrInProgress)
	assert.Equal(t, 1, gen.calls, "second trigger must not start a generation call")

	close(release)
	require.NoError(t, <-done)

	// Guard is released after completion.
	result, err := orch.Trigger(ctx, today)
	require.NoError(t, err)
	assert.False(t, result.Evolved, "watermark from the first evolution blocks an immediate second")
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt([]model.StateCount{
		{State: model.StateActive, Count: 20},
		{State: model.StateVibrant, Count: 10},
	}, 3)

	assert.Contains(t, prompt, "level 3")
	assert.Contains(t, prompt, "active")
	assert.Contains(t, prompt, "vibrant")

	empty := BuildPrompt(nil, 1)
	assert.True(t, strings.Contains(empty, "balanced"))
}
