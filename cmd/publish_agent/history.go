package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mktdept/content-pipeline/internal/db"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <post>",
	Short: "Show recorded stage runs for a post",
	Long:  "Lists stage attempts recorded in the history database, newest first. Requires DATABASE_URL to be set.",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, args []string) error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("history requires DATABASE_URL to be set")
	}

	ctx := context.Background()
	history, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer history.Close()

	runs, err := history.ListStageRuns(ctx, args[0], historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded stage runs")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %-12s %-22s %6dms  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Status, r.StageType, r.DurationMs, r.Message)
	}
	return nil
}
