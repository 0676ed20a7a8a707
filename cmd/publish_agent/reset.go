package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetKeepResults bool

var resetCmd = &cobra.Command{
	Use:   "reset <post>",
	Short: "Start a fresh deployment cycle for a post",
	Long:  "Assigns a new deployment ID and clears the verified URL and verification code. Stage results are cleared too unless --keep-results is set.",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetKeepResults, "keep-results", false, "Keep prior stage results")
	rootCmd.AddCommand(resetCmd)
}

func runReset(_ *cobra.Command, args []string) error {
	svc, _, cleanup, err := buildService(context.Background())
	if err != nil {
		return err
	}
	defer cleanup()

	execution, err := svc.ResetExecution(args[0], resetKeepResults)
	if err != nil {
		return err
	}

	fmt.Printf("Reset %s: new deployment %s\n", args[0], execution.DeploymentID)
	return nil
}
