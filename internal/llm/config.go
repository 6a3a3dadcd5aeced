package llm

import (
	"errors"
	"fmt"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskMilestoneBrief TaskType = "milestone_brief"
)

type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderAnthropic Provider = "anthropic"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
	TimeoutMs   int     `yaml:"timeout_ms" json:"timeout_ms"` // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool                    `yaml:"enabled" json:"enabled"`
	Provider   Provider                `yaml:"provider" json:"provider"`
	LogCalls   bool                    `yaml:"log_calls" json:"log_calls"`
	Endpoint   string                  `yaml:"endpoint" json:"endpoint"`
	BaseURL    string                  `yaml:"base_url" json:"base_url,omitempty"`
	Model      string                  `yaml:"model" json:"model"`
	APIKey     string                  `yaml:"api_key" json:"-"`
	TimeoutMs  int                     `yaml:"timeout_ms" json:"timeout_ms"`
	MaxRetries int                     `yaml:"max_retries" json:"max_retries"`
	Tasks      map[TaskType]TaskConfig `yaml:"tasks" json:"tasks"`
}

// DefaultConfig returns an LLMConfig with sensible defaults.
// LLM is disabled by default; briefs then come from the template author.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    false,
		Provider:   ProviderOllama,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		TimeoutMs:  10000,
		MaxRetries: 1,
		Tasks: map[TaskType]TaskConfig{
			TaskMilestoneBrief: {Temperature: 0.3, MaxTokens: 1024, TimeoutMs: 8000},
		},
	}
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// Validate reports every problem at once. A disabled config is always valid.
func (c LLMConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	var errs []error
	switch c.Provider {
	case ProviderOllama:
		if c.Endpoint == "" {
			errs = append(errs, errors.New("llm.endpoint is required for ollama"))
		}
	case ProviderAnthropic:
		if c.APIKey == "" {
			errs = append(errs, errors.New("llm.api_key is required for anthropic"))
		}
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not one of ollama, anthropic", c.Provider))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	if c.TimeoutMs <= 0 {
		errs = append(errs, errors.New("llm.timeout_ms must be positive"))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("llm.max_retries must not be negative"))
	}
	return errors.Join(errs...)
}
