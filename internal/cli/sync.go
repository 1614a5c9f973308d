package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symbi-app/symbi/internal/classify"
	"github.com/symbi-app/symbi/internal/config"
	"github.com/symbi-app/symbi/internal/gemini"
	"github.com/symbi-app/symbi/internal/health"
	"github.com/symbi-app/symbi/internal/model"
	"github.com/symbi-app/symbi/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull today's metrics and record the pet's state",
		Long:  "Fetch the day's metrics from the health export, classify them, and record the state. With --ai the classification is delegated to Gemini, falling back to the rules on failure.",
		Run:   runSync,
	}

	cmd.Flags().String("date", "", "Day to sync (YYYY-MM-DD, default today)")
	cmd.Flags().Bool("ai", false, "Classify with Gemini instead of the threshold rules")

	RootCmd.AddCommand(cmd)
}

func runSync(cmd *cobra.Command, args []string) {
	day, err := dayFlag(cmd)
	if err != nil {
		exitErr("sync", err)
	}
	useAI, _ := cmd.Flags().GetBool("ai")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}

	provider := health.NewExportFileProvider(cfg.Health.ExportPath)
	snap, err := provider.FetchMetrics(cmd.Context(), day)
	if errors.Is(err, health.ErrUnavailable) {
		fmt.Println(`{"status": "no data yet"}`)
		return
	}
	if err != nil {
		exitErr("fetch metrics", err)
	}

	state, source, err := classifyDay(cmd, cfg, snap, useAI)
	if err != nil {
		exitErr("classify", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entry, err := s.RecordState(cmd.Context(), store.RecordParams{
		Day:        snap.Day,
		State:      state,
		Source:     source,
		Steps:      snap.Steps,
		SleepHours: snap.SleepHours,
		HRV:        snap.HRV,
	})
	if err != nil {
		exitErr("record", err)
	}

	b, _ := json.Marshal(entry)
	fmt.Println(string(b))
}

// classifyDay prefers the AI path when requested and falls back to the
// rules on any AI failure.
func classifyDay(cmd *cobra.Command, cfg *config.Config, snap model.MetricSnapshot, useAI bool) (model.EmotionalState, model.StateSource, error) {
	if useAI {
		client, err := gemini.NewClient(gemini.Options{
			APIKey:        cfg.Gemini.APIKey,
			ImageModel:    cfg.Gemini.ImageModel,
			TextModel:     cfg.Gemini.TextModel,
			AppearanceDir: cfg.Gemini.AppearanceDir,
			Logger:        newLogger(),
		})
		if err == nil {
			if state, err := client.ClassifyDay(cmd.Context(), snap); err == nil {
				return state, model.SourceAI, nil
			}
		}
		// Fall through to the rules; the entry's source records what won.
	}

	state, err := classify.Classify(snap, cfg.Thresholds)
	if err != nil {
		return "", "", err
	}
	return state, model.SourceRules, nil
}
