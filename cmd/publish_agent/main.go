// Package main provides the entry point for the publishing pipeline agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "publish_agent",
	Short: "Content publishing pipeline agent",
	Long:  "publish_agent exports blog posts to the web, verifies the published URL, and fans the content out to social and blog platforms through a configurable stage pipeline.",
}

var projectRoot string

func init() {
	rootCmd.PersistentFlags().StringVar(&projectRoot, "project", ".", "Project root directory (holds project.json and posts/)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
