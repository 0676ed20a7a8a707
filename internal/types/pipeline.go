package types

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Pipeline is the ordered collection of stages configured for one project.
// It is persisted as the project's .pipeline.json file.
type Pipeline struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Stages []Stage `json:"stages"`
}

// DefaultPipeline returns the two-stage default: web export followed by URL
// verification with requireCodeMatch enabled.
func DefaultPipeline() *Pipeline {
	webExport := NewStage(StageWebExport)

	urlVerify := NewStage(StageURLVerify)
	urlVerify.SetSetting(SettingRequireCodeMatch, "true")

	p := &Pipeline{
		ID:   uuid.NewString(),
		Name: "Default Pipeline",
	}
	p.AddStage(webExport)
	p.AddStage(urlVerify)
	return p
}

// AddStage appends a stage and reassigns contiguous order values.
func (p *Pipeline) AddStage(stage Stage) {
	p.Stages = append(p.Stages, stage)
	p.normalizeOrder()
}

// RemoveStage removes the stage with the given id and reassigns contiguous
// order values. It reports whether a stage was removed.
func (p *Pipeline) RemoveStage(id string) bool {
	for i, s := range p.Stages {
		if s.ID == id {
			p.Stages = append(p.Stages[:i], p.Stages[i+1:]...)
			p.normalizeOrder()
			return true
		}
	}
	return false
}

// normalizeOrder reassigns order values contiguously from 0 by current list
// position. Insertion order among untouched stages is preserved; order values
// are always a permutation of 0..n-1 after every mutation.
func (p *Pipeline) normalizeOrder() {
	for i := range p.Stages {
		p.Stages[i].Order = i
	}
}

// SortedStages returns the stages in ascending order, stably sorted.
func (p *Pipeline) SortedStages() []Stage {
	sorted := make([]Stage, len(p.Stages))
	copy(sorted, p.Stages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// EnabledStages returns the sorted stages filtered to enabled ones.
func (p *Pipeline) EnabledStages() []Stage {
	var enabled []Stage
	for _, s := range p.SortedStages() {
		if s.Enabled {
			enabled = append(enabled, s)
		}
	}
	return enabled
}

// GatekeeperStages returns the sorted stages whose type is a gatekeeper.
func (p *Pipeline) GatekeeperStages() []Stage {
	var gatekeepers []Stage
	for _, s := range p.SortedStages() {
		if s.Type.IsGatekeeper() {
			gatekeepers = append(gatekeepers, s)
		}
	}
	return gatekeepers
}

// SocialStages returns the sorted stages whose type is not a gatekeeper
// (social and blog publishing stages).
func (p *Pipeline) SocialStages() []Stage {
	var social []Stage
	for _, s := range p.SortedStages() {
		if !s.Type.IsGatekeeper() {
			social = append(social, s)
		}
	}
	return social
}

// StageNotFoundError indicates a stage ID that is not part of the pipeline.
type StageNotFoundError struct {
	StageID    string
	PipelineID string
}

func (e *StageNotFoundError) Error() string {
	return fmt.Sprintf("stage %s not found in pipeline %s", e.StageID, e.PipelineID)
}

// StageByID returns the first stage with the given id.
func (p *Pipeline) StageByID(id string) (*Stage, error) {
	for i := range p.Stages {
		if p.Stages[i].ID == id {
			return &p.Stages[i], nil
		}
	}
	return nil, &StageNotFoundError{StageID: id, PipelineID: p.ID}
}
