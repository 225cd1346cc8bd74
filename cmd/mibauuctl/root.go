package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mibauuctl",
	Short: "Run and inspect the mibauu backend",
	Long: `mibauuctl runs the mibauu HTTP backend: the back-office CRUD mounts,
the mobile read mirrors, login and health.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
