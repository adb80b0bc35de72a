package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   os.Args[0],
	Short: "Selftest coordinates on-demand self tests for a long-running service",
	Long: `Selftest pauses the service main loop at a safe point, runs the
registered diagnostic tests and resumes normal operation, reporting
per-test statuses to the caller.
		`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
