package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Level
	}{
		{"debug", "debug", LevelDebug},
		{"info", "INFO", LevelInfo},
		{"warn", "warn", LevelWarn},
		{"warning_alias", "warning", LevelWarn},
		{"error", "Error", LevelError},
		{"critical", "critical", LevelCritical},
		{"fatal_alias", "fatal", LevelCritical},
		{"unknown_defaults_debug", "bogus", LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestLevel_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(LevelWarn)
	require.NoError(t, err)
	assert.Equal(t, `"warn"`, string(data))
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder("app-1", "svc-1")
	rec := b.Build(LevelInfo, "mymodule", "hello", map[string]any{"user_id": 42})

	assert.Equal(t, "app-1", rec.ApplicationID)
	assert.Equal(t, "svc-1", rec.ServiceName)
	assert.Equal(t, "mymodule", rec.ModuleName)
	assert.Equal(t, "hello", rec.Message)
	assert.Equal(t, LevelInfo, rec.Level)
	assert.Greater(t, rec.TS, float64(0))
	assert.Equal(t, "go", rec.Context["language"])
	assert.Equal(t, 42, rec.Context["user_id"])
	assert.NotEmpty(t, rec.Context["thread_id"])
}

func TestBuilder_Build_ThreadIDIncrements(t *testing.T) {
	b := NewBuilder("app-1", "")
	first := b.Build(LevelDebug, "m", "a", nil)
	second := b.Build(LevelDebug, "m", "b", nil)
	assert.NotEqual(t, first.Context["thread_id"], second.Context["thread_id"])
}

func TestBuilder_BuildException(t *testing.T) {
	b := NewBuilder("app-1", "svc-1")
	rec := b.BuildException(LevelError, "m", "boom", "RuntimeError", "stack...", nil)

	assert.Equal(t, "RuntimeError", rec.ExceptionType)
	assert.Equal(t, "stack...", rec.Stacktrace)
	assert.Equal(t, LevelError, rec.Level)
}
