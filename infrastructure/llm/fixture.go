package llm

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixtures maps a stage name to the canned completion returned for it
type Fixtures map[string]string

// FixtureProvider returns canned completions keyed by stage. It is used for
// local development and by the CLI when no real model is configured.
type FixtureProvider struct {
	responses Fixtures
}

// NewFixtureProvider creates a provider from in-memory fixtures
func NewFixtureProvider(responses Fixtures) *FixtureProvider {
	return &FixtureProvider{responses: responses}
}

// LoadFixtureProvider reads fixtures from a YAML file
func LoadFixtureProvider(path string) (*FixtureProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes a YAML document of stage: response pairs
func ParseFixtures(data []byte) (*FixtureProvider, error) {
	var responses Fixtures
	if err := yaml.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return NewFixtureProvider(responses), nil
}

// IsAvailable returns true when at least one fixture is loaded
func (f *FixtureProvider) IsAvailable() bool {
	return len(f.responses) > 0
}

// Complete returns the fixture for options.Stage
func (f *FixtureProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, ok := f.responses[options.Stage]
	if !ok {
		return "", fmt.Errorf("no fixture for stage %q", options.Stage)
	}
	return resp, nil
}
