package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestion(t *testing.T) {
	t.Run("Should decode a fenced graph", func(t *testing.T) {
		body := "```json\n{\"nodes\":[{\"id\":\"n1\",\"position\":{\"x\":1,\"y\":2},\"data\":{\"label\":\"API\",\"cost\":3.5}}],\"edges\":[],\"rationale\":\"simple\"}\n```"

		s, err := ParseSuggestion(body)

		require.NoError(t, err)
		require.Len(t, s.Nodes, 1)
		assert.Equal(t, "n1", s.Nodes[0].ID)
		assert.Equal(t, 1.0, s.Nodes[0].Position.X)
		assert.Equal(t, 3.5, s.Nodes[0].Data["cost"])
		assert.Equal(t, "simple", s.Rationale)
	})

	t.Run("Should map both code fields", func(t *testing.T) {
		s, err := ParseSuggestion(`{"cdkCode":"code","architectureSuggestion":"text"}`)

		require.NoError(t, err)
		assert.Equal(t, "code", s.Code)
		assert.Equal(t, "text", s.Text)
		assert.Equal(t, "code", s.CodeOrText())
	})

	t.Run("Should keep a plain body as text", func(t *testing.T) {
		s, err := ParseSuggestion("import * as cdk from 'aws-cdk-lib';")

		require.NoError(t, err)
		assert.Empty(t, s.Nodes)
		assert.Equal(t, "import * as cdk from 'aws-cdk-lib';", s.CodeOrText())
	})

	t.Run("Should strip the fence from fenced code", func(t *testing.T) {
		body := "```typescript\nimport * as cdk from 'aws-cdk-lib';\nnew cdk.App();\n```"

		s, err := ParseSuggestion(body)

		require.NoError(t, err)
		assert.Empty(t, s.Code)
		assert.Equal(t, "import * as cdk from 'aws-cdk-lib';\nnew cdk.App();", s.Text)
		assert.NotContains(t, s.CodeOrText(), "```")
	})

	t.Run("Should reject broken JSON", func(t *testing.T) {
		_, err := ParseSuggestion(`{"nodes": [`)

		assert.Error(t, err)
	})

	t.Run("Should reject an empty body", func(t *testing.T) {
		_, err := ParseSuggestion("  ```\n```  ")

		assert.Error(t, err)
	})
}
