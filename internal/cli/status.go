package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symbi-app/symbi/internal/evolution"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show evolution progress",
		Long:  "Recompute the positive-day streak from the daily log and report eligibility.",
		Run:   runStatus,
	}

	cmd.Flags().String("date", "", "Anchor day (YYYY-MM-DD, default today)")

	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	day, err := dayFlag(cmd)
	if err != nil {
		exitErr("status", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	timeout, err := cfg.GenerationTimeout()
	if err != nil {
		exitErr("load config", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	orch := evolution.New(s, nil, evolution.Config{
		RequiredDays:      cfg.Evolution.RequiredDays,
		PositiveStates:    cfg.PositiveSet(),
		GenerationTimeout: timeout,
	}, newLogger())

	progress, err := orch.Progress(cmd.Context(), day)
	if err != nil {
		exitErr("status", err)
	}

	b, _ := json.MarshalIndent(progress, "", "  ")
	fmt.Println(string(b))
}
