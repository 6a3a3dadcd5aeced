package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicModels maps friendly names to Anthropic model IDs.
var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-20250514",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// anthropicClient implements LLMClient with the Anthropic Messages API.
type anthropicClient struct {
	cfg      LLMConfig
	client   *anthropic.Client
	model    string
	observer Observer
}

// NewAnthropicClient builds a hosted-model client. cfg.BaseURL, when set,
// replaces the API base URL.
func NewAnthropicClient(cfg LLMConfig, observer Observer) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(max(cfg.MaxRetries, 0)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	model := cfg.Model
	if id, ok := anthropicModels[model]; ok {
		model = id
	}
	return &anthropicClient{cfg: cfg, client: &client, model: model, observer: observer}, nil
}

func (c *anthropicClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	temp, maxTok, timeout := taskParams(c.cfg, req)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTok),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(temp)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		err = mapAnthropicError(ctx, err)
		c.observe(req.Task, time.Since(start).Milliseconds(), err)
		return nil, err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	latency := time.Since(start).Milliseconds()
	if text.Len() == 0 {
		err := fmt.Errorf("%w: no text content in response", ErrInvalidOutput)
		c.observe(req.Task, latency, err)
		return nil, err
	}
	c.observe(req.Task, latency, nil)
	return &GenerateResponse{Text: text.String(), Model: string(msg.Model), LatencyMs: latency}, nil
}

// Available reports whether the client is configured; the hosted API has
// no cheap health endpoint.
func (c *anthropicClient) Available(context.Context) bool {
	return c.cfg.APIKey != ""
}

func (c *anthropicClient) observe(task TaskType, latency int64, err error) {
	c.observer.OnCallComplete(LLMCallEvent{
		Task:      task,
		Provider:  ProviderAnthropic,
		Model:     c.model,
		LatencyMs: latency,
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
}

func mapAnthropicError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ErrTimeout
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case apiErr.StatusCode >= 500:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
