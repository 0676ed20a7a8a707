package main

import (
	"context"
	"os"

	"github.com/mktdept/content-pipeline/internal/observability"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <post>",
	Short: "Show per-stage status for a post",
	Long:  "Shows the effective status of every pipeline stage for a post. Statuses are recomputed on each invocation, so deleting the exported web page re-locks the social and blog stages.",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, args []string) error {
	svc, _, cleanup, err := buildService(context.Background())
	if err != nil {
		return err
	}
	defer cleanup()

	views, execution, err := svc.Status(args[0])
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintStatus(args[0], views, execution)
	return nil
}
