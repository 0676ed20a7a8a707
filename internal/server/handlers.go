package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mktdept/content-pipeline/internal/pipeline"
	"github.com/mktdept/content-pipeline/internal/types"
)

// TokenRequest represents the request body for /auth/token
type TokenRequest struct {
	APIToken string `json:"api_token"`
}

// TokenResponse represents the response for /auth/token
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in_hours"`
}

// StageView represents one pipeline stage in API responses
type StageView struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	ProfileID string `json:"profile_id,omitempty"`
	Order     int    `json:"order"`
	Enabled   bool   `json:"enabled"`
}

// PipelineResponse represents the response for /api/pipeline
type PipelineResponse struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Stages []StageView `json:"stages"`
}

// StageStatusResponse represents one stage row in /api/status responses
type StageStatusResponse struct {
	StageID      string `json:"stage_id"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	PublishedURL string `json:"published_url,omitempty"`
	CompletedAt  string `json:"completed_at,omitempty"`
}

// StatusResponse represents the response for /api/status/{post}
type StatusResponse struct {
	PostName     string                `json:"post_name"`
	DeploymentID string                `json:"deployment_id"`
	VerifiedURL  string                `json:"verified_url,omitempty"`
	Stages       []StageStatusResponse `json:"stages"`
}

// PostView represents one post in /api/posts responses
type PostView struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Draft bool   `json:"draft"`
}

// RunStageResponse represents the response for /api/run/{post}/{stage}
type RunStageResponse struct {
	PostName     string `json:"post_name"`
	StageID      string `json:"stage_id"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	PublishedURL string `json:"published_url,omitempty"`
}

// handleHealth reports server liveness
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleToken exchanges the project API token for a session JWT.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.APIToken == "" {
		s.errorResponse(w, http.StatusBadRequest, "api_token is required")
		return
	}

	if s.project.APITokenHash == "" {
		s.errorResponse(w, http.StatusForbidden, "no API token configured: run 'publish_agent token set' first")
		return
	}
	if !s.tokenConfig.VerifyToken(req.APIToken, s.project.APITokenHash) {
		s.errorResponse(w, http.StatusUnauthorized, "invalid API token")
		return
	}

	// Each exchange gets its own session ID.
	token, err := s.jwtService.GenerateToken(uuid.New())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	s.jsonResponse(w, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresIn: s.jwtService.config.ExpirationHours,
	})
}

// handlePipeline returns the project's pipeline definition
func (s *Server) handlePipeline(w http.ResponseWriter, _ *http.Request) {
	p, err := s.svc.LoadPipeline()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := PipelineResponse{ID: p.ID, Name: p.Name}
	for _, stage := range p.SortedStages() {
		resp.Stages = append(resp.Stages, StageView{
			ID:        stage.ID,
			Type:      string(stage.Type),
			Name:      stage.Type.DisplayName(),
			ProfileID: stage.ProfileID,
			Order:     stage.Order,
			Enabled:   stage.Enabled,
		})
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListPosts returns the posts in the project workspace
func (s *Server) handleListPosts(w http.ResponseWriter, _ *http.Request) {
	posts, err := s.svc.ListPosts()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, PostView{Name: p.Name, Title: p.Title, Draft: p.Draft})
	}
	s.jsonResponse(w, http.StatusOK, views)
}

// handleStatus returns the effective status of every stage for a post.
// Statuses are recomputed on each request, so a deleted web export shows up
// as re-locked downstream stages without any extra bookkeeping.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	postName := r.PathValue("post")

	views, execution, err := s.svc.Status(postName)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := StatusResponse{
		PostName:     postName,
		DeploymentID: execution.DeploymentID,
		VerifiedURL:  execution.VerifiedURL,
	}
	for _, v := range views {
		row := StageStatusResponse{
			StageID: v.Stage.ID,
			Type:    string(v.Stage.Type),
			Name:    v.Stage.Type.DisplayName(),
			Status:  string(v.Status),
		}
		if v.Result != nil {
			row.Message = v.Result.Message
			row.PublishedURL = v.Result.PublishedURL
			if v.Result.CompletedAt != nil {
				row.CompletedAt = v.Result.CompletedAt.Format(time.RFC3339)
			}
		}
		resp.Stages = append(resp.Stages, row)
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleRunStage executes a single stage for a post and returns its result
func (s *Server) handleRunStage(w http.ResponseWriter, r *http.Request) {
	postName := r.PathValue("post")
	stageID := r.PathValue("stage")

	result, err := s.svc.RunStage(r.Context(), postName, stageID)
	if err != nil {
		if errors.Is(err, pipeline.ErrStageLocked) {
			s.errorResponse(w, http.StatusConflict, err.Error())
			return
		}
		var notFound *types.StageNotFoundError
		if errors.As(err, &notFound) {
			s.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, RunStageResponse{
		PostName:     postName,
		StageID:      stageID,
		Status:       string(result.Status),
		Message:      result.Message,
		PublishedURL: result.PublishedURL,
	})
}

// handleReset starts a fresh deployment cycle for a post. Pass
// keep_results=true to retain prior stage results.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	postName := r.PathValue("post")
	keepResults := r.URL.Query().Get("keep_results") == "true"

	execution, err := s.svc.ResetExecution(postName, keepResults)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"post_name":     postName,
		"deployment_id": execution.DeploymentID,
	})
}
