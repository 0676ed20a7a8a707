package types

import (
	"time"

	"github.com/google/uuid"
)

// StageStatus is the per-stage state machine within one execution.
// LOCKED and PENDING are computed defaults, never persisted as results.
type StageStatus string

// Stage status values.
const (
	StatusLocked     StageStatus = "LOCKED"
	StatusPending    StageStatus = "PENDING"
	StatusInProgress StageStatus = "IN_PROGRESS"
	StatusCompleted  StageStatus = "COMPLETED"
	StatusFailed     StageStatus = "FAILED"
	StatusWarning    StageStatus = "WARNING"
)

// IsTerminal reports whether the status is final for this run of the stage.
func (s StageStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusWarning
}

// IsComplete reports whether the status satisfies gatekeeper completion.
// WARNING counts: the stage finished, just with reduced confidence.
func (s StageStatus) IsComplete() bool {
	return s == StatusCompleted || s == StatusWarning
}

// StageResult is the recorded outcome of the latest run of one stage.
// Re-running a stage overwrites it; no history is retained.
type StageResult struct {
	Status       StageStatus `json:"status"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
	Message      string      `json:"message,omitempty"`
	PublishedURL string      `json:"publishedUrl,omitempty"`
}

// NewStageResult builds a StageResult, stamping CompletedAt when the status
// is terminal.
func NewStageResult(status StageStatus, message string) StageResult {
	r := StageResult{Status: status, Message: message}
	if status.IsTerminal() {
		now := time.Now().UTC()
		r.CompletedAt = &now
	}
	return r
}

// NewStageResultWithURL builds a terminal-capable StageResult carrying a
// published/output URL.
func NewStageResultWithURL(status StageStatus, message, publishedURL string) StageResult {
	r := NewStageResult(status, message)
	r.PublishedURL = publishedURL
	return r
}

// PipelineExecution tracks one post's progress through a pipeline for a
// single deployment cycle. It is persisted as {postname}-pipeline.json.
type PipelineExecution struct {
	PostName         string                 `json:"postName"`
	PipelineID       string                 `json:"pipelineId"`
	DeploymentID     string                 `json:"deploymentId"`
	StartedAt        time.Time              `json:"startedAt"`
	VerifiedURL      string                 `json:"verifiedUrl,omitempty"`
	VerificationCode string                 `json:"verificationCode,omitempty"`
	StageResults     map[string]StageResult `json:"stageResults"`
}

// NewPipelineExecution creates a fresh execution record for a post with a
// new deployment id.
func NewPipelineExecution(postName, pipelineID string) *PipelineExecution {
	return &PipelineExecution{
		PostName:     postName,
		PipelineID:   pipelineID,
		DeploymentID: uuid.NewString(),
		StartedAt:    time.Now().UTC(),
		StageResults: make(map[string]StageResult),
	}
}

// Reset starts a new deployment cycle: fresh deployment id and start time.
// The verification code and verified URL are always cleared, since re-running
// web export must regenerate the code. Stage results are retained only when
// keepResults is true.
func (e *PipelineExecution) Reset(keepResults bool) {
	e.DeploymentID = uuid.NewString()
	e.StartedAt = time.Now().UTC()
	e.VerificationCode = ""
	e.VerifiedURL = ""
	if !keepResults {
		e.StageResults = make(map[string]StageResult)
	}
}

// SetStageResult stores the result for a stage id, overwriting any prior
// result for that stage.
func (e *PipelineExecution) SetStageResult(stageID string, result StageResult) {
	if e.StageResults == nil {
		e.StageResults = make(map[string]StageResult)
	}
	e.StageResults[stageID] = result
}

// StageResultFor returns the stored result for a stage id, if any.
func (e *PipelineExecution) StageResultFor(stageID string) (StageResult, bool) {
	r, ok := e.StageResults[stageID]
	return r, ok
}

// GatekeepersComplete reports whether every gatekeeper stage in the pipeline
// has a stored result with a complete status. Any missing result or
// incomplete status makes the predicate false.
func (e *PipelineExecution) GatekeepersComplete(p *Pipeline) bool {
	for _, gk := range p.GatekeeperStages() {
		result, ok := e.StageResults[gk.ID]
		if !ok || !result.Status.IsComplete() {
			return false
		}
	}
	return true
}

// EffectiveStatus computes the status of a stage at query time. A stored
// result is returned verbatim. Otherwise social/blog stages are LOCKED until
// the gatekeepers complete; everything else is PENDING. Locking is never
// persisted, so completing a gatekeeper retroactively unlocks dependents
// without an explicit transition.
func (e *PipelineExecution) EffectiveStatus(stage *Stage, p *Pipeline) StageStatus {
	if result, ok := e.StageResults[stage.ID]; ok {
		return result.Status
	}
	if stage.Type.IsGated() && !e.GatekeepersComplete(p) {
		return StatusLocked
	}
	return StatusPending
}
