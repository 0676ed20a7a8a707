package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectFileName), []byte(content), 0o644))
	return root
}

func TestLoadProject(t *testing.T) {
	root := writeProject(t, `{
		"name": "blog",
		"webUrlBase": "https://blog.example.com",
		"profiles": [
			{"id": "linkedin-main", "platform": "linkedin", "accountId": "a1", "includeUrl": true}
		]
	}`)

	p, err := LoadProject(root)
	require.NoError(t, err)

	assert.Equal(t, "blog", p.Name)
	assert.Equal(t, root, p.Root)
	// The base URL is normalized to end with a slash.
	assert.Equal(t, "https://blog.example.com/", p.WebURLBase)
	// Defaults.
	assert.Equal(t, "site", p.ExportDir)
	assert.Equal(t, filepath.Join(root, "site"), p.ExportRoot())
	assert.Equal(t, filepath.Join(root, "posts"), p.PostsDir())

	profile, ok := p.ProfileByID("linkedin-main")
	require.True(t, ok)
	assert.True(t, profile.IncludeURL)
	assert.Equal(t, "end", profile.URLPlacement)
}

func TestLoadProject_MissingFile(t *testing.T) {
	_, err := LoadProject(t.TempDir())
	assert.Error(t, err)
}

func TestLoadProject_RequiresName(t *testing.T) {
	root := writeProject(t, `{"webUrlBase": "https://x.example.com/"}`)

	_, err := LoadProject(root)
	assert.Error(t, err)
}

func TestLoadProject_RejectsInvalidURLPlacement(t *testing.T) {
	root := writeProject(t, `{
		"name": "blog",
		"profiles": [{"id": "p1", "platform": "linkedin", "urlPlacement": "middle"}]
	}`)

	_, err := LoadProject(root)
	assert.Error(t, err)
}

func TestLoadProject_RejectsDuplicateProfileIDs(t *testing.T) {
	root := writeProject(t, `{
		"name": "blog",
		"profiles": [
			{"id": "p1", "platform": "linkedin"},
			{"id": "p1", "platform": "twitter"}
		]
	}`)

	_, err := LoadProject(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate profile id")
}

func TestLoadProject_APIKeysFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("GETLATE_API_KEY", "env-getlate")
	t.Setenv("DEVTO_API_KEY", "env-devto")

	root := writeProject(t, `{"name": "blog"}`)
	p, err := LoadProject(root)
	require.NoError(t, err)

	assert.Equal(t, "env-gemini", p.GeminiAPIKey)
	assert.Equal(t, "env-getlate", p.GetLateAPIKey)
	assert.Equal(t, "env-devto", p.DevToAPIKey)
}

func TestLoadProject_FileKeysWinOverEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-gemini")

	root := writeProject(t, `{"name": "blog", "geminiApiKey": "file-gemini"}`)
	p, err := LoadProject(root)
	require.NoError(t, err)

	assert.Equal(t, "file-gemini", p.GeminiAPIKey)
}

func TestProject_SaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	p := &Project{Name: "blog", Root: root, WebURLBase: "https://blog.example.com/"}
	require.NoError(t, p.Save())

	loaded, err := LoadProject(root)
	require.NoError(t, err)
	assert.Equal(t, "blog", loaded.Name)
	assert.Equal(t, "https://blog.example.com/", loaded.WebURLBase)
}
