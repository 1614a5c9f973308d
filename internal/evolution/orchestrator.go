// Package evolution gates and commits pet evolutions.
//
// An evolution consumes a streak of positive days: the orchestrator checks
// eligibility, asks the image collaborator for a new appearance, and on
// success appends an immutable evolution record whose watermark prevents
// the same streak from triggering twice. A failed or timed-out generation
// leaves eligibility untouched, so the user can retry without
// re-accumulating days.
package evolution

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/symbi-app/symbi/internal/gemini"
	"github.com/symbi-app/symbi/internal/model"
	"github.com/symbi-app/symbi/internal/store"
	"github.com/symbi-app/symbi/internal/streak"
)

var (
	// ErrInProgress means an evolution attempt is already awaiting
	// generation. Callers should disable the trigger rather than retry.
	ErrInProgress = errors.New("evolution already in progress")

	// ErrGenerationFailed wraps image-collaborator failures, including
	// timeouts. Eligibility is preserved; retrying is safe.
	ErrGenerationFailed = errors.New("appearance generation failed")
)

// DefaultGenerationTimeout bounds the external generation call.
const DefaultGenerationTimeout = 30 * time.Second

// Config holds the streak requirement and generation policy.
type Config struct {
	RequiredDays      int
	PositiveStates    map[model.EmotionalState]bool
	GenerationTimeout time.Duration
}

// Orchestrator runs the evolution state machine over a store and an image
// generator. At most one generation call is in flight at a time.
type Orchestrator struct {
	store  store.Store
	gen    gemini.Generator
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	inFlight bool
}

// TriggerResult reports the outcome of one trigger attempt. Evolved is
// false with a nil error when the streak is simply not long enough yet.
type TriggerResult struct {
	Evolved  bool                    `json:"evolved"`
	Progress model.EvolutionProgress `json:"progress"`
	Record   *model.EvolutionRecord  `json:"record,omitempty"`
}

// New creates an orchestrator. A nil logger is replaced with a no-op.
func New(s store.Store, gen gemini.Generator, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = DefaultGenerationTimeout
	}
	return &Orchestrator{store: s, gen: gen, cfg: cfg, logger: logger}
}

// Progress recomputes the streak from the daily log, flooring the scan at
// the latest evolution's watermark.
func (o *Orchestrator) Progress(ctx context.Context, today model.Day) (model.EvolutionProgress, error) {
	entries, floor, err := o.window(ctx, today)
	if err != nil {
		return model.EvolutionProgress{}, err
	}
	return streak.ComputeProgress(streak.Params{
		Entries:      entries,
		Today:        today,
		Positive:     o.cfg.PositiveStates,
		RequiredDays: o.cfg.RequiredDays,
		Floor:        floor,
	})
}

// Trigger attempts an evolution. Not eligible is a normal result, not an
// error. Generation failure returns ErrGenerationFailed and commits
// nothing, and a concurrent attempt returns ErrInProgress without starting
// a second generation call.
func (o *Orchestrator) Trigger(ctx context.Context, today model.Day) (*TriggerResult, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrInProgress
	}
	o.inFlight = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	entries, floor, err := o.window(ctx, today)
	if err != nil {
		return nil, err
	}

	progress, err := streak.ComputeProgress(streak.Params{
		Entries:      entries,
		Today:        today,
		Positive:     o.cfg.PositiveStates,
		RequiredDays: o.cfg.RequiredDays,
		Floor:        floor,
	})
	if err != nil {
		return nil, err
	}

	if !progress.Eligible {
		o.logger.Debug("not eligible yet",
			zap.Int("consecutive", progress.ConsecutivePositiveDays),
			zap.Int("required", progress.RequiredDays))
		return &TriggerResult{Progress: progress}, nil
	}

	latest, err := o.store.LatestEvolution(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest evolution: %w", err)
	}
	level := 1
	if latest != nil {
		level = latest.Level + 1
	}

	dominant := streak.DominantStates(entries, today, o.cfg.RequiredDays)
	prompt := BuildPrompt(dominant, level)

	genCtx, cancel := context.WithTimeout(ctx, o.cfg.GenerationTimeout)
	defer cancel()

	imageRef, err := o.gen.GenerateAppearance(genCtx, prompt, level)
	if err != nil {
		// Eligibility is not consumed; nothing was written.
		o.logger.Warn("generation failed", zap.Int("level", level), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	record, err := o.store.AppendEvolution(ctx, store.AppendEvolutionParams{
		Watermark:      today,
		ImageRef:       imageRef,
		DominantStates: dominant,
	})
	if err != nil {
		return nil, fmt.Errorf("commit evolution: %w", err)
	}

	o.logger.Info("evolved",
		zap.Int("level", record.Level),
		zap.String("image", record.ImageRef))

	return &TriggerResult{Evolved: true, Progress: progress, Record: record}, nil
}

// window loads the trailing daily log needed for one scan plus the current
// watermark floor.
func (o *Orchestrator) window(ctx context.Context, today model.Day) ([]model.DailyStateEntry, model.Day, error) {
	var floor model.Day
	latest, err := o.store.LatestEvolution(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("latest evolution: %w", err)
	}
	if latest != nil {
		floor = latest.Watermark
	}

	from := today.Sub(o.cfg.RequiredDays)
	entries, err := o.store.GetRange(ctx, from, today)
	if err != nil {
		return nil, "", fmt.Errorf("load daily log: %w", err)
	}
	return entries, floor, nil
}

// BuildPrompt describes the evolved pet for the image model from the state
// distribution of the qualifying window.
func BuildPrompt(dominant []model.StateCount, level int) string {
	mood := "balanced"
	if len(dominant) > 0 {
		mood = string(dominant[0].State)
	}

	var others []string
	for i, sc := range dominant {
		if i == 0 {
			continue
		}
		others = append(others, string(sc.State))
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "A cute Halloween ghost pet, evolution level %d, ", level)
	fmt.Fprintf(b, "with a predominantly %s personality", mood)
	if len(others) > 0 {
		fmt.Fprintf(b, ", touched by %s moods", strings.Join(others, " and "))
	}
	b.WriteString(". Soft glow, big expressive eyes, dark whimsical background, digital art.")
	return b.String()
}
