package main

import (
	"os"

	"github.com/symbi-app/symbi/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
