package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStage(t *testing.T) {
	stage := NewStage(StageGetLate)

	assert.NotEmpty(t, stage.ID)
	assert.Equal(t, StageGetLate, stage.Type)
	assert.True(t, stage.Enabled)

	other := NewStage(StageGetLate)
	assert.NotEqual(t, stage.ID, other.ID)
}

func TestStage_CacheKey_SocialWithProfile(t *testing.T) {
	stage := NewStage(StageGetLate)
	stage.ProfileID = "linkedin-main"

	assert.Equal(t, "getlate-linkedin-main", stage.CacheKey())

	// Deterministic: a different stage instance targeting the same profile
	// shares the cached transform.
	twin := NewStage(StageGetLate)
	twin.ProfileID = "linkedin-main"
	assert.Equal(t, stage.CacheKey(), twin.CacheKey())
}

func TestStage_CacheKey_FallsBackToStageID(t *testing.T) {
	// Blog stages key by stage id even with a profile set.
	devto := NewStage(StageDevTo)
	devto.ProfileID = "devto-main"
	assert.Equal(t, devto.ID, devto.CacheKey())

	// Social stages without a profile key by stage id.
	social := NewStage(StageGetLate)
	assert.Equal(t, social.ID, social.CacheKey())
}

func TestStage_EffectivePrompt(t *testing.T) {
	stage := NewStage(StageGetLate)
	stage.PlatformHint = "linkedin"

	// Default prompt comes from the built-in prompt library.
	assert.NotEmpty(t, stage.EffectivePrompt())

	// An explicit prompt wins.
	stage.Prompt = "Rewrite this for my audience."
	assert.Equal(t, "Rewrite this for my audience.", stage.EffectivePrompt())

	// Non-transform stages have no prompt.
	export := NewStage(StageWebExport)
	assert.Empty(t, export.EffectivePrompt())
}

func TestStage_BoolSetting(t *testing.T) {
	stage := NewStage(StageURLVerify)

	assert.True(t, stage.BoolSetting(SettingRequireCodeMatch, true))
	assert.False(t, stage.BoolSetting(SettingRequireCodeMatch, false))

	stage.SetSetting(SettingRequireCodeMatch, "TRUE")
	assert.True(t, stage.BoolSetting(SettingRequireCodeMatch, false))

	// Anything that is not the literal "true" is false, even with a true default.
	for _, v := range []string{"false", "yes", "1", ""} {
		stage.SetSetting(SettingRequireCodeMatch, v)
		assert.False(t, stage.BoolSetting(SettingRequireCodeMatch, true), "value %q", v)
	}
}

func TestStage_Setting(t *testing.T) {
	stage := NewStage(StageGetLate)

	assert.Equal(t, PlacementEnd, stage.Setting(SettingURLPlacement, PlacementEnd))

	stage.SetSetting(SettingURLPlacement, PlacementStart)
	assert.Equal(t, PlacementStart, stage.Setting(SettingURLPlacement, PlacementEnd))
}

func TestStage_JSONFieldNames(t *testing.T) {
	stage := Stage{
		ID:           "s1",
		Type:         StageGetLate,
		ProfileID:    "p1",
		PlatformHint: "linkedin",
		Order:        2,
		Enabled:      true,
		Prompt:       "custom",
		StageSettings: map[string]string{
			SettingIncludeURL: "true",
		},
	}

	jsonBytes, err := json.Marshal(stage)
	require.NoError(t, err)

	raw := string(jsonBytes)
	assert.Contains(t, raw, `"id":"s1"`)
	assert.Contains(t, raw, `"type":"GETLATE"`)
	assert.Contains(t, raw, `"profileId":"p1"`)
	assert.Contains(t, raw, `"platformHint":"linkedin"`)
	assert.Contains(t, raw, `"order":2`)
	assert.Contains(t, raw, `"enabled":true`)
	assert.Contains(t, raw, `"stageSettings":{"includeUrl":"true"}`)
}
