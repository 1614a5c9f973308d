package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/symbi-app/symbi/internal/classify"
	"github.com/symbi-app/symbi/internal/model"
	"github.com/symbi-app/symbi/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "record [steps]",
		Short: "Record a day's metrics by hand",
		Long:  "Classify and record a day from manually entered metrics. With --state the classification is skipped and the given state is recorded as a manual override.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runRecord,
	}

	cmd.Flags().String("date", "", "Day to record (YYYY-MM-DD, default today)")
	cmd.Flags().Float64("sleep", -1, "Sleep hours (omit if not measured)")
	cmd.Flags().Float64("hrv", -1, "Heart-rate variability in ms (omit if not measured)")
	cmd.Flags().String("state", "", "Override the state instead of classifying")

	RootCmd.AddCommand(cmd)
}

func runRecord(cmd *cobra.Command, args []string) {
	day, err := dayFlag(cmd)
	if err != nil {
		exitErr("record", err)
	}

	steps := 0
	if len(args) > 0 {
		steps, err = strconv.Atoi(args[0])
		if err != nil {
			exitErr("record", fmt.Errorf("steps must be an integer: %w", err))
		}
	}

	snap := model.MetricSnapshot{Day: day, Steps: steps}
	if v, _ := cmd.Flags().GetFloat64("sleep"); cmd.Flags().Changed("sleep") {
		snap.SleepHours = &v
	}
	if v, _ := cmd.Flags().GetFloat64("hrv"); cmd.Flags().Changed("hrv") {
		snap.HRV = &v
	}

	var state model.EmotionalState
	source := model.SourceRules

	if override, _ := cmd.Flags().GetString("state"); override != "" {
		state = model.EmotionalState(override)
		if !state.Valid() {
			exitErr("record", fmt.Errorf("unknown state %q", override))
		}
		source = model.SourceManual
	} else {
		cfg, err := loadConfig()
		if err != nil {
			exitErr("load config", err)
		}
		state, err = classify.Classify(snap, cfg.Thresholds)
		if err != nil {
			exitErr("classify", err)
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entry, err := s.RecordState(cmd.Context(), store.RecordParams{
		Day:        day,
		State:      state,
		Source:     source,
		Steps:      steps,
		SleepHours: snap.SleepHours,
		HRV:        snap.HRV,
	})
	if err != nil {
		exitErr("record", err)
	}

	b, _ := json.Marshal(entry)
	fmt.Println(string(b))
}
