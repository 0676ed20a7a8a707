package types

import "time"

// Post is one blog post managed by the project. The body is the raw
// authored content; rendering happens at export time.
type Post struct {
	Name  string   `json:"name"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
	Draft bool     `json:"draft,omitempty"`
}

// WebTransform is the web-export metadata stored under the reserved "web"
// key of a post's transform file. Field names are part of the persisted
// format and must not change.
type WebTransform struct {
	URI            string    `json:"uri"`
	Timestamp      time.Time `json:"timestamp"`
	Exported       bool      `json:"exported"`
	LastExportPath string    `json:"lastExportPath,omitempty"`
}

// Transform is one cached AI-generated rendition of a post for a destination,
// keyed by the owning stage's cache key.
type Transform struct {
	Content     string    `json:"content"`
	Prompt      string    `json:"prompt,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// TransformSet is the full per-post transform cache persisted as
// {postname}-transforms.json: platform transforms keyed by cache key plus
// the reserved web-export entry.
type TransformSet struct {
	Web        *WebTransform        `json:"web,omitempty"`
	Transforms map[string]Transform `json:"transforms,omitempty"`
}

// Get returns the cached transform for a cache key, if present.
func (ts *TransformSet) Get(cacheKey string) (Transform, bool) {
	t, ok := ts.Transforms[cacheKey]
	return t, ok
}

// Put stores a transform under a cache key, allocating the map on first use.
func (ts *TransformSet) Put(cacheKey string, t Transform) {
	if ts.Transforms == nil {
		ts.Transforms = make(map[string]Transform)
	}
	ts.Transforms[cacheKey] = t
}

// Clone returns an independent copy. Callers may mutate the result without
// affecting shared state such as a store's read cache.
func (ts *TransformSet) Clone() *TransformSet {
	c := &TransformSet{}
	if ts.Web != nil {
		web := *ts.Web
		c.Web = &web
	}
	if ts.Transforms != nil {
		c.Transforms = make(map[string]Transform, len(ts.Transforms))
		for k, v := range ts.Transforms {
			c.Transforms[k] = v
		}
	}
	return c
}
