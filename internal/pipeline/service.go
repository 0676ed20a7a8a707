// Package pipeline provides the execution orchestrator: it runs one stage at
// a time for one post, translating collaborator outcomes into stage results.
// Sequencing across stages is caller-driven; this service is stateless per
// call apart from the per-post locks guarding execute-and-persist.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/mktdept/content-pipeline/internal/config"
	"github.com/mktdept/content-pipeline/internal/db"
	"github.com/mktdept/content-pipeline/internal/llm"
	"github.com/mktdept/content-pipeline/internal/publish"
	"github.com/mktdept/content-pipeline/internal/store"
	"github.com/mktdept/content-pipeline/internal/types"
	"github.com/mktdept/content-pipeline/internal/verify"
)

// Exporter is the web-export collaborator contract.
type Exporter interface {
	Export(post *types.Post, wt *types.WebTransform, verificationCode string) (string, error)
	RegenerateIndexes(posts []*types.Post, uriFor func(postName string) string) error
	PathForURI(uri string) string
}

// Verifier is the URL-liveness collaborator contract.
type Verifier interface {
	Verify(ctx context.Context, url, expectedCode string, requireCodeMatch bool) verify.Result
}

// Publishers resolves profiles to publishing backends.
type Publishers interface {
	ForProfile(profile *config.Profile) (publish.Publisher, error)
}

// Deps carries the orchestrator's collaborators. History is optional.
type Deps struct {
	Store      *store.Store
	Exporter   Exporter
	Verifier   Verifier
	Agent      llm.Agent
	Publishers Publishers
	History    *db.DB
}

// Service executes pipeline stages for posts of one project.
type Service struct {
	project *config.Project
	deps    Deps

	mu        sync.Mutex
	postLocks map[string]*sync.Mutex
}

// NewService creates the orchestrator for a project.
func NewService(project *config.Project, deps Deps) (*Service, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("pipeline service requires a store")
	}
	return &Service{
		project:   project,
		deps:      deps,
		postLocks: make(map[string]*sync.Mutex),
	}, nil
}

// lockPost returns the mutex serializing execute-and-persist for one post.
// Two stages for the same post must never interleave their read-mutate-save
// cycles, even if a caller (incorrectly) runs them concurrently.
func (s *Service) lockPost(postName string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.postLocks[postName]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.postLocks[postName] = m
	return m
}

// LoadPipeline returns the project pipeline, creating and persisting the
// default one on first use. Stage types dropped during migration are
// reported on stdout.
func (s *Service) LoadPipeline() (*types.Pipeline, error) {
	p, dropped, err := s.deps.Store.LoadPipeline()
	if err != nil {
		return nil, err
	}
	for _, raw := range dropped {
		fmt.Printf("Warning: dropped pipeline stage with unrecognized type %q\n", raw)
	}
	if p == nil {
		p = types.DefaultPipeline()
		if err := s.deps.Store.SavePipeline(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AreGatekeepersComplete reports whether every gatekeeper stage is complete,
// additionally re-validating that any completed web-export artifact still
// exists on disk. A deleted export re-locks dependent stages without any
// explicit state transition.
func (s *Service) AreGatekeepersComplete(p *types.Pipeline, e *types.PipelineExecution) bool {
	if !e.GatekeepersComplete(p) {
		return false
	}
	for _, gk := range p.GatekeeperStages() {
		if gk.Type != types.StageWebExport {
			continue
		}
		result, ok := e.StageResultFor(gk.ID)
		if !ok || !result.Status.IsComplete() {
			continue // already handled by the execution predicate
		}
		if !s.exportedFileExists(e.PostName) {
			return false
		}
	}
	return true
}

// exportedFileExists checks the post's recorded export artifact on disk.
func (s *Service) exportedFileExists(postName string) bool {
	ts, err := s.deps.Store.LoadTransforms(postName)
	if err != nil || ts.Web == nil || !ts.Web.Exported {
		return false
	}
	path := ts.Web.LastExportPath
	if path == "" {
		path = s.deps.Exporter.PathForURI(ts.Web.URI)
	}
	_, err = os.Stat(path)
	return err == nil
}

// StageStatusView is one row of a post's pipeline status.
type StageStatusView struct {
	Stage  types.Stage
	Status types.StageStatus
	Result *types.StageResult
}

// Status computes the effective status of every stage for a post. Statuses
// are recomputed at query time; LOCKED reflects the live gatekeeper check,
// including the on-disk artifact re-validation.
func (s *Service) Status(postName string) ([]StageStatusView, *types.PipelineExecution, error) {
	p, err := s.LoadPipeline()
	if err != nil {
		return nil, nil, err
	}
	e, err := s.deps.Store.LoadOrCreateExecution(postName, p.ID)
	if err != nil {
		return nil, nil, err
	}

	gatekeepersOK := s.AreGatekeepersComplete(p, e)
	var views []StageStatusView
	for _, stage := range p.SortedStages() {
		view := StageStatusView{Stage: stage}
		if result, ok := e.StageResultFor(stage.ID); ok {
			view.Status = result.Status
			view.Result = &result
		} else if stage.Type.IsGated() && !gatekeepersOK {
			view.Status = types.StatusLocked
		} else {
			view.Status = types.StatusPending
		}
		views = append(views, view)
	}
	return views, e, nil
}

// ListPosts returns every post in the project workspace.
func (s *Service) ListPosts() ([]*types.Post, error) {
	return s.deps.Store.ListPosts()
}

// ResetExecution starts a fresh deployment cycle for a post.
func (s *Service) ResetExecution(postName string, keepResults bool) (*types.PipelineExecution, error) {
	lock := s.lockPost(postName)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.LoadPipeline()
	if err != nil {
		return nil, err
	}
	e, err := s.deps.Store.LoadOrCreateExecution(postName, p.ID)
	if err != nil {
		return nil, err
	}
	e.Reset(keepResults)
	if err := s.deps.Store.SaveExecution(e); err != nil {
		return nil, err
	}
	return e, nil
}
