package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_PipelineSchema(t *testing.T) {
	valid := []byte(`{
		"id": "pipe-1",
		"name": "Default",
		"stages": [
			{"id": "s1", "type": "WEB_EXPORT", "order": 0, "enabled": true}
		]
	}`)
	assert.NoError(t, Validate(PipelineSchema, valid))
}

func TestValidate_PipelineSchemaRejectsMissingFields(t *testing.T) {
	invalid := []byte(`{"name": "no id or stages"}`)

	err := Validate(PipelineSchema, invalid)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_PipelineSchemaRejectsBadStage(t *testing.T) {
	invalid := []byte(`{
		"id": "pipe-1",
		"name": "bad",
		"stages": [
			{"id": "s1", "type": "WEB_EXPORT", "order": -1, "enabled": "yes"}
		]
	}`)
	assert.Error(t, Validate(PipelineSchema, invalid))
}

func TestValidate_ExecutionSchema(t *testing.T) {
	valid := []byte(`{
		"postName": "launch",
		"pipelineId": "pipe-1",
		"deploymentId": "dep-1",
		"startedAt": "2026-08-28T10:00:00Z",
		"stageResults": {
			"s1": {"status": "COMPLETED", "completedAt": "2026-08-28T10:05:00Z", "message": "ok"}
		}
	}`)
	assert.NoError(t, Validate(ExecutionSchema, valid))
}

func TestValidate_ExecutionSchemaRejectsUnknownStatus(t *testing.T) {
	invalid := []byte(`{
		"postName": "launch",
		"pipelineId": "pipe-1",
		"deploymentId": "dep-1",
		"startedAt": "2026-08-28T10:00:00Z",
		"stageResults": {
			"s1": {"status": "MAYBE"}
		}
	}`)
	assert.Error(t, Validate(ExecutionSchema, invalid))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope.schema.json", []byte(`{}`))
	require.Error(t, err)

	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}
