// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/mktdept/content-pipeline/internal/pipeline"
	"github.com/mktdept/content-pipeline/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
)

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintPipeline outputs the pipeline definition.
func (p *Printer) PrintPipeline(pl *types.Pipeline) {
	if pl == nil {
		return
	}

	var sb strings.Builder
	for _, stage := range pl.SortedStages() {
		enabled := "enabled"
		if !stage.Enabled {
			enabled = "disabled"
		}
		sb.WriteString(fmt.Sprintf("%d. %-24s %-10s %s\n", stage.Order, stage.Type.DisplayName(), enabled, stage.ID))
		if stage.ProfileID != "" {
			sb.WriteString(fmt.Sprintf("   profile: %s\n", stage.ProfileID))
		}
	}
	p.printBox(fmt.Sprintf("Pipeline: %s", pl.Name), strings.TrimRight(sb.String(), "\n"))
}

// PrintStatus outputs a post's per-stage effective statuses.
func (p *Printer) PrintStatus(postName string, views []pipeline.StageStatusView, e *types.PipelineExecution) {
	var sb strings.Builder
	if e != nil {
		sb.WriteString(fmt.Sprintf("deployment: %s\n", e.DeploymentID))
		if e.VerifiedURL != "" {
			sb.WriteString(fmt.Sprintf("url:        %s\n", e.VerifiedURL))
		}
		sb.WriteString("\n")
	}
	for _, v := range views {
		sb.WriteString(fmt.Sprintf("%-12s %s\n", v.Status, v.Stage.Type.DisplayName()))
		if v.Result != nil && v.Result.Message != "" {
			sb.WriteString(fmt.Sprintf("             %s\n", v.Result.Message))
		}
	}
	p.printBox(fmt.Sprintf("Status: %s", postName), strings.TrimRight(sb.String(), "\n"))
}

// PrintResult outputs a single stage result.
func (p *Printer) PrintResult(stage *types.Stage, result types.StageResult) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("status:  %s\n", result.Status))
	if result.Message != "" {
		sb.WriteString(fmt.Sprintf("message: %s\n", result.Message))
	}
	if result.PublishedURL != "" {
		sb.WriteString(fmt.Sprintf("url:     %s\n", result.PublishedURL))
	}
	p.printBox(stage.Type.DisplayName(), strings.TrimRight(sb.String(), "\n"))
}
