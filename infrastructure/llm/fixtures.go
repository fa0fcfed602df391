package llm

import (
	_ "embed"
)

//go:embed fixtures/default.yaml
var defaultFixtures []byte

// DefaultFixtureProvider returns a provider backed by the built-in fixtures
func DefaultFixtureProvider() (*FixtureProvider, error) {
	return ParseFixtures(defaultFixtures)
}
