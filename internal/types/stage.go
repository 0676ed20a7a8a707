package types

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mktdept/content-pipeline/internal/prompts"
)

// Stage settings keys. The string map is preserved for file-format
// compatibility; use the accessor methods rather than reading the map.
const (
	SettingIncludeURL       = "includeUrl"
	SettingURLPlacement     = "urlPlacement"
	SettingRequireCodeMatch = "requireCodeMatch"
)

// URL placement values for the urlPlacement setting.
const (
	PlacementStart = "start"
	PlacementEnd   = "end"
)

// Stage is one configured step of a pipeline.
type Stage struct {
	ID            string            `json:"id"`
	Type          StageType         `json:"type"`
	ProfileID     string            `json:"profileId,omitempty"`
	PlatformHint  string            `json:"platformHint,omitempty"`
	Order         int               `json:"order"`
	Enabled       bool              `json:"enabled"`
	Prompt        string            `json:"prompt,omitempty"`
	StageSettings map[string]string `json:"stageSettings,omitempty"`
}

// NewStage creates an enabled stage of the given type with a random id.
// The order is assigned by the owning pipeline on insertion.
func NewStage(t StageType) Stage {
	return Stage{
		ID:      uuid.NewString(),
		Type:    t,
		Enabled: true,
	}
}

// EffectivePrompt returns the prompt the AI transform should use: the explicit
// prompt when set, otherwise the built-in default for the platform hint when
// the stage type requires a transform, otherwise the empty string.
func (s *Stage) EffectivePrompt() string {
	if strings.TrimSpace(s.Prompt) != "" {
		return s.Prompt
	}
	if s.Type.RequiresTransform() {
		return prompts.TransformPrompt(s.PlatformHint)
	}
	return ""
}

// CacheKey returns the identity under which AI-generated transforms for this
// stage are cached. Social stages targeting a profile use the deterministic
// "type-profileId" form so that re-adding the same destination (in this
// pipeline or another) reuses previously generated content. All other stages
// use their own id.
func (s *Stage) CacheKey() string {
	if s.Type.IsSocialStage() && s.ProfileID != "" {
		return strings.ToLower(string(s.Type)) + "-" + s.ProfileID
	}
	return s.ID
}

// Setting returns the string value for a settings key, or def when the key
// is absent.
func (s *Stage) Setting(key, def string) string {
	if v, ok := s.StageSettings[key]; ok {
		return v
	}
	return def
}

// BoolSetting returns the boolean value for a settings key. Only the literal
// string "true" (case-insensitive) is true; anything else is false. Absent
// keys return def.
func (s *Stage) BoolSetting(key string, def bool) bool {
	v, ok := s.StageSettings[key]
	if !ok {
		return def
	}
	return strings.EqualFold(v, "true")
}

// SetSetting stores a settings value, allocating the map on first use.
func (s *Stage) SetSetting(key, value string) {
	if s.StageSettings == nil {
		s.StageSettings = make(map[string]string)
	}
	s.StageSettings[key] = value
}
