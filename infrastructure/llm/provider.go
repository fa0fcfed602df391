// Package llm talks to the generative model that designs architectures and
// writes their CDK code.
package llm

import (
	"context"
)

// Provider defines the interface for model backends (Bedrock, fixtures)
type Provider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	IsAvailable() bool
}

// CompletionOptions configures a single completion request
type CompletionOptions struct {
	Stage       string  `json:"stage"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	System      string  `json:"system,omitempty"`
}

// systemInstruction is sent with every completion
const systemInstruction = "You design AWS cloud architectures and write AWS CDK code. Answer with a single JSON object and nothing else."
