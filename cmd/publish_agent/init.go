package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mktdept/content-pipeline/internal/config"
	"github.com/mktdept/content-pipeline/internal/store"
	"github.com/mktdept/content-pipeline/internal/types"
	"github.com/spf13/cobra"
)

var (
	initName       string
	initWebURLBase string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a publishing project",
	Long:  "Creates project.json, the posts/ directory, and the default pipeline (web export followed by URL verification) in the project root.",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Project name (required)")
	initCmd.Flags().StringVar(&initWebURLBase, "web-url-base", "", "Base URL where exported posts are served, e.g. https://blog.example.com/")

	if err := initCmd.MarkFlagRequired("name"); err != nil {
		panic(fmt.Sprintf("failed to mark name flag as required: %v", err))
	}

	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	if _, err := os.Stat(filepath.Join(projectRoot, config.ProjectFileName)); err == nil {
		return fmt.Errorf("project already initialized: %s exists", config.ProjectFileName)
	}

	project := &config.Project{
		Name:       initName,
		Root:       projectRoot,
		WebURLBase: initWebURLBase,
	}
	if err := project.Save(); err != nil {
		return fmt.Errorf("failed to write project config: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(projectRoot, "posts"), 0o755); err != nil {
		return fmt.Errorf("failed to create posts directory: %w", err)
	}

	st, err := store.New(projectRoot)
	if err != nil {
		return err
	}
	pipeline := types.DefaultPipeline()
	if err := st.SavePipeline(pipeline); err != nil {
		return fmt.Errorf("failed to write default pipeline: %w", err)
	}

	fmt.Printf("Initialized project %q in %s\n", initName, projectRoot)
	fmt.Printf("Default pipeline %s created with %d stages\n", pipeline.ID, len(pipeline.Stages))
	return nil
}
