package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "evolutions",
		Short: "List committed evolutions",
		Run:   runEvolutions,
	}

	RootCmd.AddCommand(cmd)
}

func runEvolutions(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	records, err := s.ListEvolutions(cmd.Context())
	if err != nil {
		exitErr("evolutions", err)
	}

	b, _ := json.MarshalIndent(records, "", "  ")
	fmt.Println(string(b))
}
