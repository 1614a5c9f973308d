package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/symbi-app/symbi/internal/evolution"
	"github.com/symbi-app/symbi/internal/gemini"
)

func init() {
	cmd := &cobra.Command{
		Use:   "evolve",
		Short: "Trigger an evolution if the streak allows it",
		Long:  "Check eligibility and, if the positive-day streak is long enough, generate a new appearance with Gemini and commit the evolution. A failed generation leaves eligibility intact; just run it again.",
		Run:   runEvolve,
	}

	cmd.Flags().String("date", "", "Anchor day (YYYY-MM-DD, default today)")

	RootCmd.AddCommand(cmd)
}

func runEvolve(cmd *cobra.Command, args []string) {
	day, err := dayFlag(cmd)
	if err != nil {
		exitErr("evolve", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	timeout, err := cfg.GenerationTimeout()
	if err != nil {
		exitErr("load config", err)
	}

	logger := newLogger()
	client, err := gemini.NewClient(gemini.Options{
		APIKey:        cfg.Gemini.APIKey,
		ImageModel:    cfg.Gemini.ImageModel,
		TextModel:     cfg.Gemini.TextModel,
		AppearanceDir: cfg.Gemini.AppearanceDir,
		Logger:        logger,
	})
	if err != nil {
		exitErr("gemini", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	orch := evolution.New(s, client, evolution.Config{
		RequiredDays:      cfg.Evolution.RequiredDays,
		PositiveStates:    cfg.PositiveSet(),
		GenerationTimeout: timeout,
	}, logger)

	result, err := orch.Trigger(cmd.Context(), day)
	if err != nil {
		exitErr("evolve", err)
	}

	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}
