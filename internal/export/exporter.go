// Package export renders posts to standalone HTML pages with an embedded
// verification marker and regenerates the site's listing and tag-index pages.
package export

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/mktdept/content-pipeline/internal/types"
	"github.com/mktdept/content-pipeline/internal/verify"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

// indexConcurrency bounds concurrent reads of exported pages during
// listing regeneration.
const indexConcurrency = 4

// Exporter writes rendered HTML under one export root directory.
type Exporter struct {
	root string
	tmpl *template.Template
}

// NewExporter creates an exporter rooted at the given directory.
func NewExporter(root string) (*Exporter, error) {
	if root == "" {
		return nil, fmt.Errorf("export root is empty")
	}
	tmpl, err := template.ParseFS(templateFiles, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse export templates: %w", err)
	}
	return &Exporter{root: root, tmpl: tmpl}, nil
}

// Root returns the export root directory.
func (e *Exporter) Root() string {
	return e.root
}

// PathForURI returns the on-disk path an exported URI is written to.
func (e *Exporter) PathForURI(uri string) string {
	return filepath.Join(e.root, filepath.FromSlash(strings.TrimPrefix(uri, "/")))
}

// postPage is the data fed to the post template.
type postPage struct {
	Title      string
	Marker     template.HTML
	Paragraphs []string
}

// Export renders a post to HTML with the verification marker embedded and
// writes it under the export root at the transform's URI. It returns the
// written file path.
func (e *Exporter) Export(post *types.Post, wt *types.WebTransform, verificationCode string) (string, error) {
	if wt == nil || wt.URI == "" {
		return "", fmt.Errorf("web transform has no URI for post %s", post.Name)
	}

	page := postPage{
		Title:      post.Title,
		Marker:     template.HTML(verify.Marker(verificationCode)), //nolint:gosec // marker content is generated, not user input
		Paragraphs: paragraphs(post.Body),
	}

	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, "post.html.tmpl", page); err != nil {
		return "", fmt.Errorf("failed to render post %s: %w", post.Name, err)
	}

	path := e.PathForURI(wt.URI)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write exported page: %w", err)
	}
	return path, nil
}

// indexEntry is one row of a listing page.
type indexEntry struct {
	Title   string
	URI     string
	Excerpt string
}

// indexPage is the data fed to the index template.
type indexPage struct {
	Title   string
	Entries []indexEntry
}

// exportedPost pairs a post with its exported URI for listing purposes.
type exportedPost struct {
	Post *types.Post
	URI  string
}

// RegenerateIndexes rewrites the site's listing page and one page per tag,
// covering every non-draft post with an exported URI. Excerpts are pulled
// from the already-exported pages.
func (e *Exporter) RegenerateIndexes(posts []*types.Post, uriFor func(postName string) string) error {
	var exported []exportedPost
	for _, post := range posts {
		if post.Draft {
			continue
		}
		uri := uriFor(post.Name)
		if uri == "" {
			continue
		}
		exported = append(exported, exportedPost{Post: post, URI: uri})
	}
	sort.Slice(exported, func(i, j int) bool { return exported[i].Post.Name < exported[j].Post.Name })

	excerpts := make([]string, len(exported))
	var g errgroup.Group
	g.SetLimit(indexConcurrency)
	var mu sync.Mutex
	for i, ep := range exported {
		g.Go(func() error {
			excerpt := e.excerptFor(ep.URI)
			mu.Lock()
			excerpts[i] = excerpt
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	entries := make([]indexEntry, len(exported))
	tagged := make(map[string][]indexEntry)
	for i, ep := range exported {
		entry := indexEntry{Title: ep.Post.Title, URI: ep.URI, Excerpt: excerpts[i]}
		entries[i] = entry
		for _, tag := range ep.Post.Tags {
			tagged[tag] = append(tagged[tag], entry)
		}
	}

	if err := e.writeIndex(filepath.Join(e.root, "index.html"), "Posts", entries); err != nil {
		return err
	}
	for tag, tagEntries := range tagged {
		path := filepath.Join(e.root, "tags", Slugify(tag)+".html")
		if err := e.writeIndex(path, "Posts tagged "+tag, tagEntries); err != nil {
			return err
		}
	}
	return nil
}

// writeIndex renders one listing page.
func (e *Exporter) writeIndex(path, title string, entries []indexEntry) error {
	var buf bytes.Buffer
	if err := e.tmpl.ExecuteTemplate(&buf, "index.html.tmpl", indexPage{Title: title, Entries: entries}); err != nil {
		return fmt.Errorf("failed to render index %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write index %s: %w", path, err)
	}
	return nil
}

// excerptFor reads an exported page and returns its first paragraph,
// truncated. A missing or unparsable page yields an empty excerpt.
func (e *Exporter) excerptFor(uri string) string {
	f, err := os.Open(e.PathForURI(uri))
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return ""
	}
	text := strings.TrimSpace(doc.Find("article p").First().Text())
	const maxExcerpt = 160
	if len(text) > maxExcerpt {
		// Back up to a rune boundary so multi-byte characters are never
		// split mid-sequence.
		cut := maxExcerpt - 3
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}

// paragraphs splits a post body into display paragraphs on blank lines,
// skipping markdown headings (the title is rendered separately).
func paragraphs(body string) []string {
	var out []string
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" || strings.HasPrefix(block, "#") {
			continue
		}
		out = append(out, strings.Join(strings.Fields(block), " "))
	}
	return out
}
