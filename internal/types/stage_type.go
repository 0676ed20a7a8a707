// Package types provides type definitions for the publishing pipeline:
// stage taxonomy, pipeline configuration, and per-post execution state.
package types

import "strings"

// StageType identifies the kind of work a pipeline stage performs.
// The set is closed; persisted values are the upper-case names below.
type StageType string

// Stage type constants define the closed set of pipeline stage kinds.
const (
	// StageWebExport renders a post to HTML and publishes it to the web root.
	StageWebExport StageType = "WEB_EXPORT"
	// StageURLVerify checks that the exported URL is live and matches the deployment.
	StageURLVerify StageType = "URL_VERIFY"
	// StageGetLate publishes to social platforms through the GetLate unified API.
	StageGetLate StageType = "GETLATE"
	// StageDevTo publishes the post as a Dev.to article.
	StageDevTo StageType = "DEV_TO"
	// StageFacebookCopyPasta produces rewritten content for manual Facebook posting.
	StageFacebookCopyPasta StageType = "FACEBOOK_COPY_PASTA"
	// StageHackerNewsExport produces a Hacker News submission artifact.
	StageHackerNewsExport StageType = "HACKER_NEWS_EXPORT"
)

// stageTraits holds the per-type classification flags. The flags are fixed at
// compile time; behavior methods below consult this table only.
type stageTraits struct {
	DisplayName string
	Gatekeeper  bool
	Social      bool
	Blog        bool
	Transform   bool
	Export      bool
	CopyPaste   bool
}

var stageCatalog = map[StageType]stageTraits{
	StageWebExport: {
		DisplayName: "Web Export",
		Gatekeeper:  true,
		Export:      true,
	},
	StageURLVerify: {
		DisplayName: "URL Verification",
		Gatekeeper:  true,
	},
	StageGetLate: {
		DisplayName: "GetLate Social Post",
		Social:      true,
		Transform:   true,
	},
	StageDevTo: {
		DisplayName: "Dev.to Article",
		Blog:        true,
		Transform:   true,
	},
	StageFacebookCopyPasta: {
		DisplayName: "Facebook Copy/Paste",
		Social:      true,
		Transform:   true,
		CopyPaste:   true,
	},
	StageHackerNewsExport: {
		DisplayName: "Hacker News Export",
		Blog:        true,
		Transform:   true,
		Export:      true,
	},
}

// legacyStageAliases maps deprecated persisted type names onto their
// replacement. LINKEDIN and TWITTER predate the unified GetLate stage.
var legacyStageAliases = map[string]StageType{
	"LINKEDIN": StageGetLate,
	"TWITTER":  StageGetLate,
}

// ParseStageType parses a persisted stage type name, case-insensitively.
// Deprecated aliases map onto their replacement type. ok is false for
// unrecognized input; callers must treat that as "stage dropped during
// migration", not as a fatal error.
func ParseStageType(s string) (StageType, bool) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if t, found := legacyStageAliases[name]; found {
		return t, true
	}
	t := StageType(name)
	if _, found := stageCatalog[t]; found {
		return t, true
	}
	return "", false
}

// AllStageTypes returns the closed set of stage types in a stable order.
func AllStageTypes() []StageType {
	return []StageType{
		StageWebExport,
		StageURLVerify,
		StageGetLate,
		StageDevTo,
		StageFacebookCopyPasta,
		StageHackerNewsExport,
	}
}

// IsGatekeeper reports whether this stage must complete before social/blog
// stages may run.
func (t StageType) IsGatekeeper() bool { return stageCatalog[t].Gatekeeper }

// IsSocialStage reports whether this stage publishes to a social platform.
func (t StageType) IsSocialStage() bool { return stageCatalog[t].Social }

// IsBlogStage reports whether this stage publishes to a blog platform.
func (t StageType) IsBlogStage() bool { return stageCatalog[t].Blog }

// IsGated reports whether this stage is held LOCKED until all gatekeeper
// stages are complete.
func (t StageType) IsGated() bool {
	traits := stageCatalog[t]
	return traits.Social || traits.Blog
}

// RequiresTransform reports whether content must be AI-transformed before
// this stage can send it anywhere.
func (t StageType) RequiresTransform() bool { return stageCatalog[t].Transform }

// IsExportStage reports whether this stage produces a rendered artifact on disk.
func (t StageType) IsExportStage() bool { return stageCatalog[t].Export }

// IsCopyPaste reports whether this stage produces content for manual posting
// rather than publishing directly.
func (t StageType) IsCopyPaste() bool { return stageCatalog[t].CopyPaste }

// DisplayName returns the human-readable name for the stage type.
func (t StageType) DisplayName() string {
	if traits, ok := stageCatalog[t]; ok {
		return traits.DisplayName
	}
	return string(t)
}
