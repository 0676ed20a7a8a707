package main

import (
	"context"
	"os"

	"github.com/mktdept/content-pipeline/internal/observability"
	"github.com/spf13/cobra"
)

var listPipelineCmd = &cobra.Command{
	Use:   "list-pipeline",
	Short: "Show the project's pipeline definition",
	RunE:  runListPipeline,
}

func init() {
	rootCmd.AddCommand(listPipelineCmd)
}

func runListPipeline(_ *cobra.Command, _ []string) error {
	svc, _, cleanup, err := buildService(context.Background())
	if err != nil {
		return err
	}
	defer cleanup()

	p, err := svc.LoadPipeline()
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintPipeline(p)
	return nil
}
