package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mktdept/content-pipeline/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestNew_EmptyRoot(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestLoadPipeline_NoFile(t *testing.T) {
	s := newTestStore(t)

	p, dropped, err := s.LoadPipeline()
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Empty(t, dropped)
}

func TestSaveLoadPipeline_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	original := types.DefaultPipeline()
	social := types.NewStage(types.StageGetLate)
	social.ProfileID = "linkedin-main"
	social.SetSetting(types.SettingIncludeURL, "true")
	original.AddStage(social)
	require.NoError(t, s.SavePipeline(original))

	loaded, dropped, err := s.LoadPipeline()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Empty(t, dropped)
	assert.Equal(t, original.ID, loaded.ID)
	require.Len(t, loaded.Stages, 3)
	assert.Equal(t, "linkedin-main", loaded.Stages[2].ProfileID)
	assert.True(t, loaded.Stages[2].BoolSetting(types.SettingIncludeURL, false))
}

func TestSavePipeline_PersistedFieldNames(t *testing.T) {
	s := newTestStore(t)

	p := types.DefaultPipeline()
	require.NoError(t, s.SavePipeline(p))

	data, err := os.ReadFile(s.PipelinePath())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "id")
	assert.Contains(t, doc, "name")
	require.Contains(t, doc, "stages")

	stages := doc["stages"].([]any)
	first := stages[0].(map[string]any)
	for _, field := range []string{"id", "type", "order", "enabled"} {
		assert.Contains(t, first, field)
	}
}

func TestLoadPipeline_MigratesLegacyTypes(t *testing.T) {
	s := newTestStore(t)

	raw := `{
		"id": "pipe-1",
		"name": "Legacy",
		"stages": [
			{"id": "s1", "type": "WEB_EXPORT", "order": 0, "enabled": true},
			{"id": "s2", "type": "linkedin", "order": 1, "enabled": true},
			{"id": "s3", "type": "TWITTER", "order": 2, "enabled": true}
		]
	}`
	require.NoError(t, os.WriteFile(s.PipelinePath(), []byte(raw), 0o644))

	p, dropped, err := s.LoadPipeline()
	require.NoError(t, err)
	assert.Empty(t, dropped)
	require.Len(t, p.Stages, 3)
	assert.Equal(t, types.StageGetLate, p.Stages[1].Type)
	assert.Equal(t, types.StageGetLate, p.Stages[2].Type)
	// IDs and settings survive the migration.
	assert.Equal(t, "s2", p.Stages[1].ID)
}

func TestLoadPipeline_DropsUnknownTypesAndClosesOrderGaps(t *testing.T) {
	s := newTestStore(t)

	raw := `{
		"id": "pipe-1",
		"name": "Mixed",
		"stages": [
			{"id": "s1", "type": "WEB_EXPORT", "order": 0, "enabled": true},
			{"id": "s2", "type": "MYSPACE", "order": 1, "enabled": true},
			{"id": "s3", "type": "URL_VERIFY", "order": 2, "enabled": true}
		]
	}`
	require.NoError(t, os.WriteFile(s.PipelinePath(), []byte(raw), 0o644))

	p, dropped, err := s.LoadPipeline()
	require.NoError(t, err)
	assert.Equal(t, []string{"MYSPACE"}, dropped)
	require.Len(t, p.Stages, 2)
	assert.Equal(t, 0, p.Stages[0].Order)
	assert.Equal(t, 1, p.Stages[1].Order)
	assert.Equal(t, "s3", p.Stages[1].ID)
}

func TestLoadPipeline_RejectsMalformedFile(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, os.WriteFile(s.PipelinePath(), []byte(`{"stages": "nope"}`), 0o644))

	_, _, err := s.LoadPipeline()
	assert.Error(t, err)
}

func TestLoadExecution_NoFile(t *testing.T) {
	s := newTestStore(t)

	e, err := s.LoadExecution("ghost")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestSaveLoadExecution_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	e := types.NewPipelineExecution("my-post", "pipe-1")
	e.VerificationCode = "abcd1234"
	e.VerifiedURL = "https://example.com/my-post.html"
	e.SetStageResult("s1", types.NewStageResult(types.StatusCompleted, "done"))
	require.NoError(t, s.SaveExecution(e))

	loaded, err := s.LoadExecution("my-post")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, e.DeploymentID, loaded.DeploymentID)
	assert.Equal(t, "abcd1234", loaded.VerificationCode)

	result, ok := loaded.StageResultFor("s1")
	require.True(t, ok)
	assert.Equal(t, types.StatusCompleted, result.Status)
}

func TestSaveExecution_PersistedFieldNames(t *testing.T) {
	s := newTestStore(t)

	e := types.NewPipelineExecution("my-post", "pipe-1")
	e.SetStageResult("s1", types.NewStageResult(types.StatusFailed, "boom"))
	require.NoError(t, s.SaveExecution(e))

	data, err := os.ReadFile(s.ExecutionPath("my-post"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, field := range []string{"postName", "pipelineId", "deploymentId", "startedAt", "stageResults"} {
		assert.Contains(t, doc, field)
	}
}

func TestLoadOrCreateExecution(t *testing.T) {
	s := newTestStore(t)

	e, err := s.LoadOrCreateExecution("fresh", "pipe-1")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "fresh", e.PostName)
	assert.NotEmpty(t, e.DeploymentID)

	// Nothing is persisted until the caller saves.
	_, statErr := os.Stat(s.ExecutionPath("fresh"))
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, s.SaveExecution(e))
	again, err := s.LoadOrCreateExecution("fresh", "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, e.DeploymentID, again.DeploymentID)
}

func TestTransforms_RoundTripAndFieldNames(t *testing.T) {
	s := newTestStore(t)

	ts := &types.TransformSet{
		Web: &types.WebTransform{
			URI:            "my-post.html",
			Timestamp:      time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
			Exported:       true,
			LastExportPath: filepath.Join("site", "my-post.html"),
		},
	}
	ts.Put("getlate-linkedin-main", types.Transform{Content: "short version", Prompt: "p"})
	require.NoError(t, s.SaveTransforms("my-post", ts))

	data, err := os.ReadFile(s.TransformsPath("my-post"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Contains(t, doc, "web")
	web := doc["web"].(map[string]any)
	for _, field := range []string{"uri", "timestamp", "exported", "lastExportPath"} {
		assert.Contains(t, web, field)
	}

	loaded, err := s.LoadTransforms("my-post")
	require.NoError(t, err)
	require.NotNil(t, loaded.Web)
	assert.True(t, loaded.Web.Exported)
	tr, ok := loaded.Get("getlate-linkedin-main")
	require.True(t, ok)
	assert.Equal(t, "short version", tr.Content)
}

func TestLoadTransforms_MissingFileYieldsEmptySet(t *testing.T) {
	s := newTestStore(t)

	ts, err := s.LoadTransforms("ghost")
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.Nil(t, ts.Web)
}

func TestLoadTransforms_ServesFromCacheAfterSave(t *testing.T) {
	s := newTestStore(t)

	ts := &types.TransformSet{}
	ts.Put("k", types.Transform{Content: "v"})
	require.NoError(t, s.SaveTransforms("my-post", ts))

	// Deleting the backing file does not affect cached reads.
	require.NoError(t, os.Remove(s.TransformsPath("my-post")))

	cached, err := s.LoadTransforms("my-post")
	require.NoError(t, err)
	_, ok := cached.Get("k")
	assert.True(t, ok)
}

func TestLoadTransforms_ReturnsIndependentCopies(t *testing.T) {
	s := newTestStore(t)

	ts := &types.TransformSet{Web: &types.WebTransform{URI: "a.html", Exported: true}}
	ts.Put("k", types.Transform{Content: "v"})
	require.NoError(t, s.SaveTransforms("my-post", ts))

	// Mutating the saved set after the fact must not leak into the cache.
	ts.Web.Exported = false
	ts.Put("rogue", types.Transform{Content: "x"})

	first, err := s.LoadTransforms("my-post")
	require.NoError(t, err)
	assert.True(t, first.Web.Exported)
	_, ok := first.Get("rogue")
	assert.False(t, ok)

	// Mutating a loaded set must not leak into later loads.
	first.Web.Exported = false
	first.Put("rogue", types.Transform{Content: "x"})

	second, err := s.LoadTransforms("my-post")
	require.NoError(t, err)
	assert.True(t, second.Web.Exported)
	_, ok = second.Get("rogue")
	assert.False(t, ok)
}
