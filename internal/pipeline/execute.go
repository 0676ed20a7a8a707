package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mktdept/content-pipeline/internal/db"
	"github.com/mktdept/content-pipeline/internal/export"
	"github.com/mktdept/content-pipeline/internal/publish"
	"github.com/mktdept/content-pipeline/internal/types"
	"github.com/mktdept/content-pipeline/internal/verify"
)

// transformTimeout bounds one AI content-transform call.
const transformTimeout = 120 * time.Second

// publishTimeout bounds one social/blog publish attempt.
const publishTimeout = 120 * time.Second

// ErrStageLocked is returned when a caller tries to run a social/blog stage
// before the gatekeepers are complete.
var ErrStageLocked = fmt.Errorf("stage is locked: gatekeeper stages are not complete")

// RunStage executes one stage for one post and persists the updated
// execution record. The returned StageResult is always terminal; collaborator
// failures are folded into FAILED/WARNING results, never propagated.
func (s *Service) RunStage(ctx context.Context, postName, stageID string) (types.StageResult, error) {
	lock := s.lockPost(postName)
	lock.Lock()
	defer lock.Unlock()

	p, err := s.LoadPipeline()
	if err != nil {
		return types.StageResult{}, err
	}
	stage, err := p.StageByID(stageID)
	if err != nil {
		return types.StageResult{}, err
	}
	post, err := s.deps.Store.LoadPost(postName)
	if err != nil {
		return types.StageResult{}, err
	}
	execution, err := s.deps.Store.LoadOrCreateExecution(postName, p.ID)
	if err != nil {
		return types.StageResult{}, err
	}

	if stage.Type.IsGated() && !s.AreGatekeepersComplete(p, execution) {
		return types.StageResult{}, ErrStageLocked
	}

	fmt.Printf("Running stage %s (%s) for post %s...\n", stage.ID, stage.Type.DisplayName(), postName)

	execution.SetStageResult(stage.ID, types.NewStageResult(types.StatusInProgress, "stage started"))
	if err := s.deps.Store.SaveExecution(execution); err != nil {
		return types.StageResult{}, err
	}

	started := time.Now()
	result := s.execute(ctx, post, execution, stage)

	execution.SetStageResult(stage.ID, result)
	if err := s.deps.Store.SaveExecution(execution); err != nil {
		return types.StageResult{}, err
	}

	s.recordHistory(ctx, execution, stage, result, time.Since(started))
	return result, nil
}

// execute dispatches one stage to its executor. Panics from collaborators
// are converted to FAILED results so a misbehaving backend cannot take down
// the caller.
func (s *Service) execute(ctx context.Context, post *types.Post, execution *types.PipelineExecution, stage *types.Stage) (result types.StageResult) {
	defer func() {
		if r := recover(); r != nil {
			result = types.NewStageResult(types.StatusFailed, fmt.Sprintf("stage panicked: %v", r))
		}
	}()

	switch {
	case stage.Type == types.StageWebExport:
		return s.executeWebExport(post, execution)
	case stage.Type == types.StageURLVerify:
		return s.executeURLVerify(ctx, execution, stage)
	case stage.Type.IsCopyPaste(), stage.Type.IsExportStage():
		return s.executeContentExport(ctx, post, execution, stage)
	default:
		return s.executeSocialPublish(ctx, post, execution, stage)
	}
}

// executeWebExport renders the post with a fresh verification code, writes
// it under the export root, regenerates the listing pages, and records the
// public URL on the execution. Any file operation error yields FAILED.
func (s *Service) executeWebExport(post *types.Post, execution *types.PipelineExecution) types.StageResult {
	code, err := verify.GenerateCode()
	if err != nil {
		return types.NewStageResult(types.StatusFailed, err.Error())
	}

	ts, err := s.deps.Store.LoadTransforms(post.Name)
	if err != nil {
		return types.NewStageResult(types.StatusFailed, err.Error())
	}
	wt := ts.Web
	if wt == nil {
		wt = &types.WebTransform{URI: export.DefaultURI(post.Title)}
	}

	path, err := s.deps.Exporter.Export(post, wt, code)
	if err != nil {
		return types.NewStageResult(types.StatusFailed, err.Error())
	}

	wt.Exported = true
	wt.Timestamp = time.Now().UTC()
	wt.LastExportPath = path
	ts.Web = wt
	if err := s.deps.Store.SaveTransforms(post.Name, ts); err != nil {
		return types.NewStageResult(types.StatusFailed, err.Error())
	}

	fullURL := verify.BuildFullURL(s.project.WebURLBase, wt.URI)
	execution.VerificationCode = code
	execution.VerifiedURL = fullURL

	if err := s.regenerateIndexes(); err != nil {
		return types.NewStageResult(types.StatusFailed, err.Error())
	}

	message := fmt.Sprintf("exported to %s", path)
	if fullURL == "" {
		message += " (web URL base not configured)"
	}
	return types.NewStageResultWithURL(types.StatusCompleted, message, fullURL)
}

// regenerateIndexes rewrites the listing and tag pages for every non-draft
// post that has been exported.
func (s *Service) regenerateIndexes() error {
	posts, err := s.deps.Store.ListPosts()
	if err != nil {
		return err
	}
	return s.deps.Exporter.RegenerateIndexes(posts, func(postName string) string {
		ts, err := s.deps.Store.LoadTransforms(postName)
		if err != nil || ts.Web == nil || !ts.Web.Exported {
			return ""
		}
		return ts.Web.URI
	})
}

// executeURLVerify checks the exported URL recorded by web export. Stages
// are not auto-sequenced: a missing URL is an immediate failure telling the
// operator to run web export first.
func (s *Service) executeURLVerify(ctx context.Context, execution *types.PipelineExecution, stage *types.Stage) types.StageResult {
	if execution.VerifiedURL == "" {
		return types.NewStageResult(types.StatusFailed, "no URL to verify: run web export first")
	}

	requireCodeMatch := stage.BoolSetting(types.SettingRequireCodeMatch, true)
	res := s.deps.Verifier.Verify(ctx, execution.VerifiedURL, execution.VerificationCode, requireCodeMatch)

	switch {
	case !res.Success:
		return types.NewStageResult(types.StatusFailed, res.Message)
	case res.Warning:
		// Live but unverified: keep the URL, flag the confidence.
		return types.NewStageResultWithURL(types.StatusWarning, res.Message, execution.VerifiedURL)
	default:
		return types.NewStageResultWithURL(types.StatusCompleted, res.Message, execution.VerifiedURL)
	}
}

// GenerateTransform produces the AI-transformed content for a stage,
// instructing the model to include the verified URL when one exists. It
// fails fast when the agent is unconfigured; transforms are never silently
// skipped.
func (s *Service) GenerateTransform(ctx context.Context, post *types.Post, stage *types.Stage, verifiedURL string) (string, error) {
	if s.deps.Agent == nil || !s.deps.Agent.IsConfigured() {
		return "", fmt.Errorf("AI agent is not configured: set geminiApiKey or GEMINI_API_KEY")
	}

	prompt := stage.EffectivePrompt()
	if verifiedURL != "" {
		placement := s.urlPlacement(stage)
		prompt += fmt.Sprintf("\n\nInclude the link %s at the %s of the post.", verifiedURL, placement)
	}

	ctx, cancel := context.WithTimeout(ctx, transformTimeout)
	defer cancel()
	return s.deps.Agent.TransformContent(ctx, prompt, post.Body)
}

// urlPlacement resolves where the URL goes, from the stage's target profile,
// defaulting to the end.
func (s *Service) urlPlacement(stage *types.Stage) string {
	if profile, ok := s.project.ProfileByID(stage.ProfileID); ok && profile.URLPlacement != "" {
		return profile.URLPlacement
	}
	return types.PlacementEnd
}

// transformFor returns the cached transform for the stage's cache key,
// generating and persisting one when absent. The deterministic cache key
// shares generated content across pipeline redefinitions targeting the same
// destination.
func (s *Service) transformFor(ctx context.Context, post *types.Post, stage *types.Stage, verifiedURL string) (string, error) {
	ts, err := s.deps.Store.LoadTransforms(post.Name)
	if err != nil {
		return "", err
	}

	key := stage.CacheKey()
	if cached, ok := ts.Get(key); ok && cached.Content != "" {
		return cached.Content, nil
	}

	content, err := s.GenerateTransform(ctx, post, stage, verifiedURL)
	if err != nil {
		return "", err
	}

	ts.Put(key, types.Transform{
		Content:     content,
		Prompt:      stage.EffectivePrompt(),
		GeneratedAt: time.Now().UTC(),
	})
	if err := s.deps.Store.SaveTransforms(post.Name, ts); err != nil {
		return "", err
	}
	return content, nil
}

// executeSocialPublish transforms the content and dispatches it to the
// profile's publishing backend. Configuration errors (missing profile or
// backend) and collaborator failures all surface as FAILED results.
func (s *Service) executeSocialPublish(ctx context.Context, post *types.Post, execution *types.PipelineExecution, stage *types.Stage) types.StageResult {
	profile, ok := s.project.ProfileByID(stage.ProfileID)
	if !ok {
		return types.NewStageResult(types.StatusFailed,
			fmt.Sprintf("profile %q is not configured for this project", stage.ProfileID))
	}

	publisher, err := s.deps.Publishers.ForProfile(profile)
	if err != nil {
		return types.NewStageResult(types.StatusFailed, err.Error())
	}

	body, err := s.transformFor(ctx, post, stage, execution.VerifiedURL)
	if err != nil {
		return types.NewStageResult(types.StatusFailed, err.Error())
	}

	// Profile-level URL splicing is independent of the prompt instruction;
	// operators should enable one mechanism or the other.
	if profile.IncludeURL && execution.VerifiedURL != "" {
		body = spliceURL(body, execution.VerifiedURL, profile.URLPlacement)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	result, err := publisher.Publish(ctx, profile, publish.Content{
		Body:         body,
		Title:        post.Title,
		CanonicalURL: execution.VerifiedURL,
		Tags:         post.Tags,
	})
	if err != nil {
		return types.NewStageResult(types.StatusFailed, err.Error())
	}
	if !result.Success {
		return types.NewStageResult(types.StatusFailed, result.Message)
	}
	return types.NewStageResultWithURL(types.StatusCompleted, result.Message, result.PostURL)
}

// executeContentExport handles copy-paste and non-gatekeeper export stages:
// the transformed content is written to the project's exports directory for
// manual posting instead of being sent anywhere.
func (s *Service) executeContentExport(ctx context.Context, post *types.Post, execution *types.PipelineExecution, stage *types.Stage) types.StageResult {
	body, err := s.transformFor(ctx, post, stage, execution.VerifiedURL)
	if err != nil {
		return types.NewStageResult(types.StatusFailed, err.Error())
	}

	dir := filepath.Join(s.project.Root, "exports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.NewStageResult(types.StatusFailed, fmt.Sprintf("failed to create exports directory: %v", err))
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.txt", post.Name, strings.ToLower(string(stage.Type))))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return types.NewStageResult(types.StatusFailed, fmt.Sprintf("failed to write export: %v", err))
	}
	return types.NewStageResult(types.StatusCompleted, fmt.Sprintf("content ready to paste: %s", path))
}

// spliceURL inserts the URL at the configured placement.
func spliceURL(body, url, placement string) string {
	if placement == types.PlacementStart {
		return url + "\n\n" + body
	}
	return body + "\n\n" + url
}

// recordHistory appends the attempt to the optional history database.
// History failures never affect the stage result.
func (s *Service) recordHistory(ctx context.Context, execution *types.PipelineExecution, stage *types.Stage, result types.StageResult, duration time.Duration) {
	if s.deps.History == nil {
		return
	}
	err := s.deps.History.RecordStageRun(ctx, db.StageRun{
		PostName:     execution.PostName,
		DeploymentID: execution.DeploymentID,
		StageID:      stage.ID,
		StageType:    string(stage.Type),
		Status:       string(result.Status),
		Message:      result.Message,
		PublishedURL: result.PublishedURL,
		DurationMs:   duration.Milliseconds(),
	})
	if err != nil {
		fmt.Printf("Warning: failed to record stage run: %v\n", err)
	}
}
