package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mktdept/content-pipeline/internal/observability"
	"github.com/mktdept/content-pipeline/internal/types"
	"github.com/spf13/cobra"
)

var runContinueOnWarning bool

var runCmd = &cobra.Command{
	Use:   "run <post>",
	Short: "Run the pipeline for a post, stage by stage",
	Long:  "Runs every enabled pipeline stage for a post in order, skipping stages that already completed. Stops on the first failure; stages that remain locked after the gatekeepers ran are reported and skipped.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runContinueOnWarning, "continue-on-warning", true, "Keep running later stages when a stage completes with a warning")
	rootCmd.AddCommand(runCmd)
}

func runRun(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, _, cleanup, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	postName := args[0]
	printer := observability.NewPrinter(os.Stdout)

	p, err := svc.LoadPipeline()
	if err != nil {
		return err
	}

	for _, stage := range p.SortedStages() {
		if !stage.Enabled {
			continue
		}

		// Re-read the status before every stage: earlier stages may have
		// unlocked (or re-locked) this one.
		views, _, err := svc.Status(postName)
		if err != nil {
			return err
		}
		status := types.StatusPending
		for _, v := range views {
			if v.Stage.ID == stage.ID {
				status = v.Status
				break
			}
		}

		switch status {
		case types.StatusLocked:
			fmt.Printf("Skipping %s: locked (gatekeeper stages incomplete)\n", stage.Type.DisplayName())
			continue
		case types.StatusCompleted, types.StatusWarning:
			fmt.Printf("Skipping %s: already %s\n", stage.Type.DisplayName(), status)
			continue
		case types.StatusFailed:
			// A stored failure is retried on the next run.
		}

		fmt.Printf("Running %s...\n", stage.Type.DisplayName())
		result, err := svc.RunStage(ctx, postName, stage.ID)
		if err != nil {
			return err
		}
		printer.PrintResult(&stage, result)

		if result.Status == types.StatusFailed {
			return fmt.Errorf("stage %s failed: %s", stage.Type.DisplayName(), result.Message)
		}
		if result.Status == types.StatusWarning && !runContinueOnWarning {
			return fmt.Errorf("stage %s completed with warning: %s", stage.Type.DisplayName(), result.Message)
		}
	}

	views, execution, err := svc.Status(postName)
	if err != nil {
		return err
	}
	printer.PrintStatus(postName, views, execution)
	return nil
}
