package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStageType_KnownTypes(t *testing.T) {
	for _, st := range AllStageTypes() {
		parsed, ok := ParseStageType(string(st))
		require.True(t, ok, "expected %s to parse", st)
		assert.Equal(t, st, parsed)
	}
}

func TestParseStageType_CaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		want  StageType
	}{
		{"web_export", StageWebExport},
		{"Url_Verify", StageURLVerify},
		{"getlate", StageGetLate},
		{"  DEV_TO  ", StageDevTo},
		{"facebook_copy_pasta", StageFacebookCopyPasta},
		{"hacker_news_export", StageHackerNewsExport},
	}

	for _, tt := range tests {
		parsed, ok := ParseStageType(tt.input)
		require.True(t, ok, "expected %q to parse", tt.input)
		assert.Equal(t, tt.want, parsed)
	}
}

func TestParseStageType_LegacyAliases(t *testing.T) {
	tests := []string{"LINKEDIN", "linkedin", "TWITTER", "Twitter"}

	for _, input := range tests {
		parsed, ok := ParseStageType(input)
		require.True(t, ok, "expected legacy alias %q to parse", input)
		assert.Equal(t, StageGetLate, parsed)
	}
}

func TestParseStageType_Unknown(t *testing.T) {
	for _, input := range []string{"", "INSTAGRAM", "MYSPACE_EXPORT", "web export"} {
		_, ok := ParseStageType(input)
		assert.False(t, ok, "expected %q not to parse", input)
	}
}

func TestStageType_Classification(t *testing.T) {
	tests := []struct {
		stageType  StageType
		gatekeeper bool
		social     bool
		blog       bool
		gated      bool
		transform  bool
	}{
		{StageWebExport, true, false, false, false, false},
		{StageURLVerify, true, false, false, false, false},
		{StageGetLate, false, true, false, true, true},
		{StageDevTo, false, false, true, true, true},
		{StageFacebookCopyPasta, false, true, false, true, true},
		{StageHackerNewsExport, false, false, true, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.stageType), func(t *testing.T) {
			assert.Equal(t, tt.gatekeeper, tt.stageType.IsGatekeeper())
			assert.Equal(t, tt.social, tt.stageType.IsSocialStage())
			assert.Equal(t, tt.blog, tt.stageType.IsBlogStage())
			assert.Equal(t, tt.gated, tt.stageType.IsGated())
			assert.Equal(t, tt.transform, tt.stageType.RequiresTransform())
		})
	}
}

func TestStageType_NoStageIsBothGatekeeperAndGated(t *testing.T) {
	for _, st := range AllStageTypes() {
		if st.IsGatekeeper() {
			assert.False(t, st.IsGated(), "%s is both gatekeeper and gated", st)
		}
	}
}

func TestStageType_DisplayName(t *testing.T) {
	assert.Equal(t, "Web Export", StageWebExport.DisplayName())
	assert.Equal(t, "URL Verification", StageURLVerify.DisplayName())

	// Unknown types fall back to their raw value.
	assert.Equal(t, "BOGUS", StageType("BOGUS").DisplayName())
}
