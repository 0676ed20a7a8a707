// Package publish provides the publishing collaborators the pipeline
// dispatches social and blog stages to: the GetLate unified social API,
// the Dev.to REST API, and a headless-browser copy-paste automation for
// platforms without a usable API.
package publish

import (
	"context"
	"fmt"

	"github.com/mktdept/content-pipeline/internal/config"
)

// Content is the material handed to a publisher: the (already transformed)
// body plus post metadata some backends need.
type Content struct {
	Body         string
	Title        string
	CanonicalURL string
	Tags         []string
}

// Result is the uniform outcome of a publish attempt. Once a request is in
// flight, failures are reported here rather than as errors.
type Result struct {
	Success bool
	Message string
	PostURL string
}

// Publisher publishes content for one destination profile.
type Publisher interface {
	// Publish sends content on behalf of profile. An error return is
	// reserved for invocation preconditions (bad profile, missing key);
	// network and API failures come back as an unsuccessful Result.
	Publish(ctx context.Context, profile *config.Profile, content Content) (*Result, error)
}

// Registry maps profile platforms to publishing backends.
type Registry struct {
	publishers map[string]Publisher
}

// NewRegistry wires the standard backends from project configuration.
// GetLate covers the mainstream social platforms; Dev.to has its own API;
// LinkedIn/X browser automation is available under the *_browser platforms.
func NewRegistry(project *config.Project) *Registry {
	r := &Registry{publishers: make(map[string]Publisher)}

	if project.GetLateAPIKey != "" {
		getlate := NewGetLateClient(project.GetLateAPIKey)
		for _, platform := range []string{"linkedin", "twitter", "instagram", "facebook", "threads", "bluesky"} {
			r.publishers[platform] = getlate
		}
	}
	if project.DevToAPIKey != "" {
		r.publishers["devto"] = NewDevToClient(project.DevToAPIKey)
	}

	browser := NewBrowserPublisher()
	r.publishers["linkedin_browser"] = browser
	r.publishers["x_browser"] = browser

	return r
}

// Register installs or replaces the backend for a platform.
func (r *Registry) Register(platform string, p Publisher) {
	r.publishers[platform] = p
}

// ForProfile returns the publishing backend for a profile's platform.
func (r *Registry) ForProfile(profile *config.Profile) (Publisher, error) {
	p, ok := r.publishers[profile.Platform]
	if !ok {
		return nil, fmt.Errorf("no publishing backend configured for platform %q", profile.Platform)
	}
	return p, nil
}
