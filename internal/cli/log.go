package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/symbi-app/symbi/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the daily state log",
		Run:   runLog,
	}

	cmd.Flags().String("from", "", "Start day (YYYY-MM-DD, default 30 days ago)")
	cmd.Flags().String("to", "", "End day (YYYY-MM-DD, default today)")

	RootCmd.AddCommand(cmd)
}

func runLog(cmd *cobra.Command, args []string) {
	to := model.Today(time.Local)
	if s, _ := cmd.Flags().GetString("to"); s != "" {
		var err error
		to, err = model.ParseDay(s)
		if err != nil {
			exitErr("log", err)
		}
	}

	from := to.Sub(29)
	if s, _ := cmd.Flags().GetString("from"); s != "" {
		var err error
		from, err = model.ParseDay(s)
		if err != nil {
			exitErr("log", err)
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.GetRange(cmd.Context(), from, to)
	if err != nil {
		exitErr("log", err)
	}

	b, _ := json.MarshalIndent(entries, "", "  ")
	fmt.Println(string(b))
}
