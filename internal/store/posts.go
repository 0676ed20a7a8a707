package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mktdept/content-pipeline/internal/types"
)

// PostPath returns the path of a post's markdown source.
func (s *Store) PostPath(postName string) string {
	return filepath.Join(s.postsDir, postName+".md")
}

// LoadPost reads a post's markdown source. An optional header block of
// "key: value" lines (title, tags, draft) terminated by a blank line is
// recognized; without one the title defaults to the first "# " heading, then
// to the post name.
func (s *Store) LoadPost(postName string) (*types.Post, error) {
	data, err := os.ReadFile(s.PostPath(postName))
	if err != nil {
		return nil, fmt.Errorf("failed to read post %s: %w", postName, err)
	}

	post := &types.Post{Name: postName}
	body := string(data)

	if header, rest, ok := splitHeader(body); ok {
		for key, value := range header {
			switch key {
			case "title":
				post.Title = value
			case "tags":
				for _, tag := range strings.Split(value, ",") {
					if tag = strings.TrimSpace(tag); tag != "" {
						post.Tags = append(post.Tags, tag)
					}
				}
			case "draft":
				post.Draft = strings.EqualFold(value, "true")
			}
		}
		body = rest
	}

	if post.Title == "" {
		post.Title = firstHeading(body)
	}
	if post.Title == "" {
		post.Title = postName
	}
	post.Body = strings.TrimSpace(body)
	return post, nil
}

// ListPosts returns every post in the posts directory, sorted by name.
func (s *Store) ListPosts() ([]*types.Post, error) {
	entries, err := os.ReadDir(s.postsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read posts directory: %w", err)
	}

	var posts []*types.Post
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		post, err := s.LoadPost(strings.TrimSuffix(name, ".md"))
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].Name < posts[j].Name })
	return posts, nil
}

// splitHeader parses a leading "key: value" header block. ok is false when
// the content does not start with one.
func splitHeader(content string) (map[string]string, string, bool) {
	lines := strings.Split(content, "\n")
	header := make(map[string]string)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(header) == 0 {
				return nil, "", false
			}
			return header, strings.Join(lines[i+1:], "\n"), true
		}
		key, value, found := strings.Cut(trimmed, ":")
		key = strings.ToLower(strings.TrimSpace(key))
		if !found || key == "" || strings.ContainsAny(key, " #") {
			return nil, "", false
		}
		header[key] = strings.TrimSpace(value)
	}
	return nil, "", false
}

// firstHeading returns the text of the first markdown H1, if any.
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
