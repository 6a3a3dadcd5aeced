package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_DisabledAndValid(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 8000, cfg.TaskTimeout(TaskMilestoneBrief))
}

func TestTaskTimeout_FallsBackToGlobal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tasks = nil
	cfg.TimeoutMs = 1234

	assert.Equal(t, 1234, cfg.TaskTimeout(TaskMilestoneBrief))
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := LLMConfig{Enabled: true, Provider: ProviderAnthropic, MaxRetries: -1}

	err := cfg.Validate()

	assert.ErrorContains(t, err, "api_key")
	assert.ErrorContains(t, err, "model")
	assert.ErrorContains(t, err, "timeout_ms")
	assert.ErrorContains(t, err, "max_retries")
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Provider = "other"

	assert.ErrorContains(t, cfg.Validate(), "provider")
}
