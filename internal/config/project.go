// Package config provides project configuration loading and validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ProjectFileName is the per-project configuration file.
const ProjectFileName = "project.json"

// Profile describes one publishing destination account. Stages reference
// profiles by id; the platform selects the publishing backend and the
// default transform prompt.
type Profile struct {
	ID           string `json:"id" validate:"required"`
	Platform     string `json:"platform" validate:"required"`
	Name         string `json:"name,omitempty"`
	AccountID    string `json:"accountId,omitempty"`
	IncludeURL   bool   `json:"includeUrl,omitempty"`
	URLPlacement string `json:"urlPlacement,omitempty" validate:"omitempty,oneof=start end"`
}

// Project is the per-project configuration loaded from project.json.
// API keys may be left empty here and supplied via environment variables.
type Project struct {
	Name string `json:"name" validate:"required"`
	// Root is the project directory on disk. Not persisted; set at load time.
	Root string `json:"-"`

	// WebURLBase is the public base URL exported posts are served from,
	// normalized to end with "/". Empty means web publishing is not
	// configured.
	WebURLBase string `json:"webUrlBase,omitempty" validate:"omitempty,url"`
	// ExportDir is the directory exported HTML is written to, relative to
	// the project root. Defaults to "site".
	ExportDir string `json:"exportDir,omitempty"`

	GeminiAPIKey  string `json:"geminiApiKey,omitempty"`
	GetLateAPIKey string `json:"getlateApiKey,omitempty"`
	DevToAPIKey   string `json:"devtoApiKey,omitempty"`

	// APITokenHash is the bcrypt hash of the status-API bootstrap token.
	APITokenHash string `json:"apiTokenHash,omitempty"`

	Profiles []Profile `json:"profiles,omitempty" validate:"dive"`
}

// LoadProject loads and validates the project configuration from a project
// directory.
func LoadProject(root string) (*Project, error) {
	if root == "" {
		return nil, fmt.Errorf("project root is empty")
	}

	path := filepath.Join(root, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project config %s: %w", path, err)
	}

	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project config: %w", err)
	}
	p.Root = root
	p.applyEnv()
	p.applyDefaults()

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// Save writes the project configuration back to its project directory.
func (p *Project) Save() error {
	if p.Root == "" {
		return fmt.Errorf("project root is not set")
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project config: %w", err)
	}
	path := filepath.Join(p.Root, ProjectFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project config %s: %w", path, err)
	}
	return nil
}

// applyEnv fills empty API keys from environment variables.
func (p *Project) applyEnv() {
	if p.GeminiAPIKey == "" {
		p.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if p.GetLateAPIKey == "" {
		p.GetLateAPIKey = os.Getenv("GETLATE_API_KEY")
	}
	if p.DevToAPIKey == "" {
		p.DevToAPIKey = os.Getenv("DEVTO_API_KEY")
	}
}

// applyDefaults normalizes optional fields.
func (p *Project) applyDefaults() {
	if p.ExportDir == "" {
		p.ExportDir = "site"
	}
	if p.WebURLBase != "" && !strings.HasSuffix(p.WebURLBase, "/") {
		p.WebURLBase += "/"
	}
	for i := range p.Profiles {
		if p.Profiles[i].URLPlacement == "" {
			p.Profiles[i].URLPlacement = "end"
		}
	}
}

// Validate checks struct tags plus cross-field rules the tags cannot express.
func (p *Project) Validate() error {
	if err := validator.New().Struct(p); err != nil {
		return fmt.Errorf("project config invalid: %w", err)
	}

	seen := make(map[string]bool, len(p.Profiles))
	for _, profile := range p.Profiles {
		if seen[profile.ID] {
			return fmt.Errorf("project config invalid: duplicate profile id %q", profile.ID)
		}
		seen[profile.ID] = true
	}
	return nil
}

// ProfileByID returns the profile with the given id, if configured.
func (p *Project) ProfileByID(id string) (*Profile, bool) {
	for i := range p.Profiles {
		if p.Profiles[i].ID == id {
			return &p.Profiles[i], true
		}
	}
	return nil, false
}

// ExportRoot returns the absolute directory exported HTML is written to.
func (p *Project) ExportRoot() string {
	return filepath.Join(p.Root, p.ExportDir)
}

// PostsDir returns the directory holding post content and sibling state files.
func (p *Project) PostsDir() string {
	return filepath.Join(p.Root, "posts")
}
