package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cloudmap-backend/application/ports"
	pkgerrors "cloudmap-backend/pkg/errors"
)

// ClientConfig holds per-call model settings
type ClientConfig struct {
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// DefaultClientConfig returns the settings used when none are configured
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:     90 * time.Second,
		MaxTokens:   4096,
		Temperature: 0.2,
	}
}

// Client implements ports.ModelClient on top of a Provider
type Client struct {
	provider Provider
	config   ClientConfig
	logger   *zap.Logger
}

// NewClient creates a model client
func NewClient(provider Provider, config ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		provider: provider,
		config:   config,
		logger:   logger,
	}
}

// IsAvailable reports whether the underlying provider can take requests
func (c *Client) IsAvailable() bool {
	return c.provider != nil && c.provider.IsAvailable()
}

// Suggest sends the prompt once and parses the structured answer.
// Every failure is a model error.
func (c *Client) Suggest(ctx context.Context, prompt string, stage ports.Stage) (*ports.Suggestion, error) {
	if !c.IsAvailable() {
		return nil, pkgerrors.NewModelError(fmt.Errorf("model provider is not available"))
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := c.provider.Complete(ctx, prompt, CompletionOptions{
		Stage:       string(stage),
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		System:      systemInstruction,
	})
	if err != nil {
		c.logger.Warn("Model completion failed",
			zap.String("stage", string(stage)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, pkgerrors.NewModelError(err)
	}

	suggestion, err := ParseSuggestion(body)
	if err != nil {
		c.logger.Warn("Model response could not be parsed",
			zap.String("stage", string(stage)),
			zap.Int("responseLength", len(body)),
			zap.Error(err),
		)
		return nil, pkgerrors.NewModelError(err)
	}

	c.logger.Debug("Model completion parsed",
		zap.String("stage", string(stage)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("nodes", len(suggestion.Nodes)),
		zap.Int("edges", len(suggestion.Edges)),
		zap.Int("codeLength", len(suggestion.CodeOrText())),
	)
	return suggestion, nil
}
