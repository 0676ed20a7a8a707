// Package store provides file-based persistence for pipeline state.
// Each aggregate is one JSON file: the project pipeline (.pipeline.json),
// per-post executions ({post}-pipeline.json), and per-post transform caches
// ({post}-transforms.json). Field names in these files are a compatibility
// contract and never change.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mktdept/content-pipeline/internal/schemas"
	"github.com/mktdept/content-pipeline/internal/types"
)

// PipelineFileName is the per-project pipeline definition file.
const PipelineFileName = ".pipeline.json"

// transformCacheSize bounds the in-memory read cache over transform files.
const transformCacheSize = 64

// Store reads and writes pipeline state under one project directory.
type Store struct {
	root     string
	postsDir string

	transforms *lru.Cache[string, *types.TransformSet]
}

// New creates a store rooted at a project directory. The posts directory is
// created on demand by writes.
func New(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("project root is empty")
	}
	cache, err := lru.New[string, *types.TransformSet](transformCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create transform cache: %w", err)
	}
	return &Store{
		root:       root,
		postsDir:   filepath.Join(root, "posts"),
		transforms: cache,
	}, nil
}

// PipelinePath returns the path of the project's pipeline definition file.
func (s *Store) PipelinePath() string {
	return filepath.Join(s.root, PipelineFileName)
}

// ExecutionPath returns the path of a post's execution record.
func (s *Store) ExecutionPath(postName string) string {
	return filepath.Join(s.postsDir, postName+"-pipeline.json")
}

// TransformsPath returns the path of a post's transform cache file.
func (s *Store) TransformsPath(postName string) string {
	return filepath.Join(s.postsDir, postName+"-transforms.json")
}

// rawStage mirrors the persisted stage shape with the type left as a string
// so that legacy type names can be migrated on load.
type rawStage struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	ProfileID     string            `json:"profileId,omitempty"`
	PlatformHint  string            `json:"platformHint,omitempty"`
	Order         int               `json:"order"`
	Enabled       bool              `json:"enabled"`
	Prompt        string            `json:"prompt,omitempty"`
	StageSettings map[string]string `json:"stageSettings,omitempty"`
}

type rawPipeline struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Stages []rawStage `json:"stages"`
}

// LoadPipeline reads and validates the project pipeline. Stages whose type
// is no longer recognized are dropped, not fatal; their raw type names are
// returned so the caller can warn. Returns (nil, nil, nil) when no pipeline
// file exists yet.
func (s *Store) LoadPipeline() (*types.Pipeline, []string, error) {
	data, err := os.ReadFile(s.PipelinePath())
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}

	if err := schemas.Validate(schemas.PipelineSchema, data); err != nil {
		return nil, nil, fmt.Errorf("pipeline file %s is invalid: %w", s.PipelinePath(), err)
	}

	var raw rawPipeline
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse pipeline file: %w", err)
	}

	p := &types.Pipeline{ID: raw.ID, Name: raw.Name}
	var dropped []string
	for _, rs := range raw.Stages {
		stageType, ok := types.ParseStageType(rs.Type)
		if !ok {
			dropped = append(dropped, rs.Type)
			continue
		}
		p.Stages = append(p.Stages, types.Stage{
			ID:            rs.ID,
			Type:          stageType,
			ProfileID:     rs.ProfileID,
			PlatformHint:  rs.PlatformHint,
			Order:         rs.Order,
			Enabled:       rs.Enabled,
			Prompt:        rs.Prompt,
			StageSettings: rs.StageSettings,
		})
	}
	if len(dropped) > 0 {
		// Dropping stages leaves order gaps; close them.
		sorted := p.SortedStages()
		p.Stages = sorted
		for i := range p.Stages {
			p.Stages[i].Order = i
		}
	}
	return p, dropped, nil
}

// SavePipeline writes the project pipeline definition.
func (s *Store) SavePipeline(p *types.Pipeline) error {
	return s.writeJSON(s.PipelinePath(), p)
}

// LoadExecution reads a post's execution record. Returns (nil, nil) when the
// post has never entered the pipeline.
func (s *Store) LoadExecution(postName string) (*types.PipelineExecution, error) {
	data, err := os.ReadFile(s.ExecutionPath(postName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read execution file: %w", err)
	}

	if err := schemas.Validate(schemas.ExecutionSchema, data); err != nil {
		return nil, fmt.Errorf("execution file %s is invalid: %w", s.ExecutionPath(postName), err)
	}

	var e types.PipelineExecution
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to parse execution file: %w", err)
	}
	if e.StageResults == nil {
		e.StageResults = make(map[string]types.StageResult)
	}
	return &e, nil
}

// LoadOrCreateExecution returns the post's execution record, creating a
// fresh one (new deployment id, empty results) the first time the post
// enters the pipeline.
func (s *Store) LoadOrCreateExecution(postName, pipelineID string) (*types.PipelineExecution, error) {
	e, err := s.LoadExecution(postName)
	if err != nil {
		return nil, err
	}
	if e == nil {
		e = types.NewPipelineExecution(postName, pipelineID)
	}
	return e, nil
}

// SaveExecution persists a post's execution record.
func (s *Store) SaveExecution(e *types.PipelineExecution) error {
	return s.writeJSON(s.ExecutionPath(e.PostName), e)
}

// LoadTransforms reads a post's transform cache, serving repeated reads from
// an in-memory LRU. A missing file yields an empty set. Callers always get
// their own copy: the cached set is never aliased, so concurrent status
// reads and stage runs cannot race on it.
func (s *Store) LoadTransforms(postName string) (*types.TransformSet, error) {
	if ts, ok := s.transforms.Get(postName); ok {
		return ts.Clone(), nil
	}

	data, err := os.ReadFile(s.TransformsPath(postName))
	if os.IsNotExist(err) {
		return &types.TransformSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transforms file: %w", err)
	}

	var ts types.TransformSet
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("failed to parse transforms file: %w", err)
	}
	s.transforms.Add(postName, &ts)
	return ts.Clone(), nil
}

// SaveTransforms persists a post's transform cache and refreshes the read
// cache with a private copy.
func (s *Store) SaveTransforms(postName string, ts *types.TransformSet) error {
	if err := s.writeJSON(s.TransformsPath(postName), ts); err != nil {
		return err
	}
	s.transforms.Add(postName, ts.Clone())
	return nil
}

// writeJSON marshals v and writes it, creating parent directories as needed.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
