package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/symbi-app/symbi/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a previously exported daily log",
		Long:  "Import daily states from a JSON export (file arg or stdin). Entries replay through the normal upsert, so the imported value wins for overlapping days.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	var data []byte
	var err error

	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read import", err)
	}

	var ex store.Export
	if err := json.Unmarshal(data, &ex); err != nil {
		exitErr("parse import", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.Import(cmd.Context(), &ex)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Printf(`{"imported": %d}`+"\n", n)
}
