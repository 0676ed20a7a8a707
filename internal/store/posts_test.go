package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePost(t *testing.T, s *Store, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(s.postsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.postsDir, name+".md"), []byte(content), 0o644))
}

func TestLoadPost_WithHeader(t *testing.T) {
	s := newTestStore(t)
	writePost(t, s, "launch", "title: Launch Day\ntags: go, release\ndraft: false\n\nWe shipped.\n")

	post, err := s.LoadPost("launch")
	require.NoError(t, err)
	assert.Equal(t, "launch", post.Name)
	assert.Equal(t, "Launch Day", post.Title)
	assert.Equal(t, []string{"go", "release"}, post.Tags)
	assert.False(t, post.Draft)
	assert.Equal(t, "We shipped.", post.Body)
}

func TestLoadPost_TitleFromHeading(t *testing.T) {
	s := newTestStore(t)
	writePost(t, s, "plain", "# Hello World\n\nBody text.\n")

	post, err := s.LoadPost("plain")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", post.Title)
	assert.Contains(t, post.Body, "Body text.")
}

func TestLoadPost_TitleFallsBackToName(t *testing.T) {
	s := newTestStore(t)
	writePost(t, s, "untitled", "just some text with no heading\n")

	post, err := s.LoadPost("untitled")
	require.NoError(t, err)
	assert.Equal(t, "untitled", post.Title)
}

func TestLoadPost_DraftFlag(t *testing.T) {
	s := newTestStore(t)
	writePost(t, s, "wip", "title: WIP\ndraft: TRUE\n\nNot done yet.\n")

	post, err := s.LoadPost("wip")
	require.NoError(t, err)
	assert.True(t, post.Draft)
}

func TestLoadPost_Missing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadPost("ghost")
	assert.Error(t, err)
}

func TestListPosts(t *testing.T) {
	s := newTestStore(t)
	writePost(t, s, "beta", "# Beta\n\nb\n")
	writePost(t, s, "alpha", "# Alpha\n\na\n")
	// State files next to posts must not be picked up.
	require.NoError(t, os.WriteFile(filepath.Join(s.postsDir, "alpha-pipeline.json"), []byte("{}"), 0o644))

	posts, err := s.ListPosts()
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "alpha", posts[0].Name)
	assert.Equal(t, "beta", posts[1].Name)
}

func TestListPosts_NoDirectory(t *testing.T) {
	s := newTestStore(t)

	posts, err := s.ListPosts()
	require.NoError(t, err)
	assert.Empty(t, posts)
}
