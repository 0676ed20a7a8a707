package main

import (
	"context"
	"fmt"

	"github.com/mktdept/content-pipeline/internal/server"
	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the status API server",
	Long:  "Starts an HTTP server exposing the pipeline definition, per-post stage statuses, and stage execution for the dashboard UI. Requests are authenticated with JWTs obtained from the project's API token.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	svc, project, cleanup, err := buildService(context.Background())
	if err != nil {
		return err
	}
	defer cleanup()

	srv, err := server.New(server.Config{Port: servePort}, project, svc)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
