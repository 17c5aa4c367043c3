package main

import (
	"os"

	"github.com/alphalens/backend/cmd/alphalens/commands"
)

// main is the entry point for the AlphaLens CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
