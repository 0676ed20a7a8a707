package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mktdept/content-pipeline/internal/observability"
	"github.com/mktdept/content-pipeline/internal/pipeline"
	"github.com/spf13/cobra"
)

var runStageCmd = &cobra.Command{
	Use:   "run-stage <post> <stage-id>",
	Short: "Execute a single pipeline stage for a post",
	Long:  "Executes one stage and persists its result. Social and blog stages refuse to run while the gatekeeper stages (web export, URL verification) are incomplete.",
	Args:  cobra.ExactArgs(2),
	RunE:  runRunStage,
}

func init() {
	rootCmd.AddCommand(runStageCmd)
}

func runRunStage(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, _, cleanup, err := buildService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	postName, stageID := args[0], args[1]

	result, err := svc.RunStage(ctx, postName, stageID)
	if err != nil {
		if errors.Is(err, pipeline.ErrStageLocked) {
			return fmt.Errorf("stage %s is locked: complete web export and URL verification first", stageID)
		}
		return err
	}

	p, err := svc.LoadPipeline()
	if err != nil {
		return err
	}
	stage, err := p.StageByID(stageID)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintResult(stage, result)
	return nil
}
