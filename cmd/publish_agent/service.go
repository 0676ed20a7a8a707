package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mktdept/content-pipeline/internal/config"
	"github.com/mktdept/content-pipeline/internal/db"
	"github.com/mktdept/content-pipeline/internal/export"
	"github.com/mktdept/content-pipeline/internal/llm"
	"github.com/mktdept/content-pipeline/internal/pipeline"
	"github.com/mktdept/content-pipeline/internal/publish"
	"github.com/mktdept/content-pipeline/internal/store"
	"github.com/mktdept/content-pipeline/internal/verify"
)

// buildService wires the pipeline service from the project root. The returned
// cleanup function releases the LLM client and the optional history database.
func buildService(ctx context.Context) (*pipeline.Service, *config.Project, func(), error) {
	project, err := config.LoadProject(projectRoot)
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := store.New(project.Root)
	if err != nil {
		return nil, nil, nil, err
	}

	exporter, err := export.NewExporter(project.ExportRoot())
	if err != nil {
		return nil, nil, nil, err
	}

	agent, err := llm.NewAgent(ctx, llm.DefaultConfig(), project.GeminiAPIKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create LLM agent: %w", err)
	}

	var history *db.DB
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		history, err = db.Connect(ctx, databaseURL)
		if err != nil {
			// History is an audit trail; an unreachable database must not
			// block publishing.
			fmt.Printf("Warning: stage-run history unavailable: %v\n", err)
			history = nil
		}
	}

	svc, err := pipeline.NewService(project, pipeline.Deps{
		Store:      st,
		Exporter:   exporter,
		Verifier:   verify.NewService(),
		Agent:      agent,
		Publishers: publish.NewRegistry(project),
		History:    history,
	})
	if err != nil {
		agent.Close()
		if history != nil {
			history.Close()
		}
		return nil, nil, nil, err
	}

	cleanup := func() {
		agent.Close()
		if history != nil {
			history.Close()
		}
	}
	return svc, project, cleanup, nil
}
