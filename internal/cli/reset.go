package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase the daily log and evolution history",
		Run:   runReset,
	}

	cmd.Flags().Bool("force", false, "Required; this is irreversible")

	RootCmd.AddCommand(cmd)
}

func runReset(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")
	if !force {
		exitErr("reset", fmt.Errorf("refusing to erase data without --force"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.Reset(cmd.Context()); err != nil {
		exitErr("reset", err)
	}

	fmt.Println(`{"reset": true}`)
}
