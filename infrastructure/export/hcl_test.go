package export

import (
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudmap-backend/domain/architecture"
)

func TestHCL(t *testing.T) {
	record := architecture.NewRecord("arch-1", "a web app", "serverless",
		[]architecture.Node{
			{ID: "n1", Type: "awsService", Position: architecture.Position{X: 10, Y: 20}, Data: map[string]any{
				"label":    "API Gateway",
				"iamRoles": []any{"ApiRole"},
				"cost":     3.5,
				"est-cost": "low",
			}},
			{ID: "n2"},
		},
		[]architecture.Edge{{ID: "e1", Source: "n1", Target: "n2", Label: "invokes"}},
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	out, err := HCL(record.ID, record.Document())
	require.NoError(t, err)

	_, diags := hclwrite.ParseConfig(out, "architecture.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())

	text := string(out)
	assert.Contains(t, text, `architecture "arch-1" {`)
	assert.Contains(t, text, `node "n1" {`)
	assert.Contains(t, text, `node "n2" {`)
	assert.Contains(t, text, `edge "e1" {`)
	assert.Contains(t, text, `"API Gateway"`)
	assert.Contains(t, text, `"ApiRole"`)
	assert.Contains(t, text, `"invokes"`)
	assert.Contains(t, text, `"a web app"`)
	assert.Less(t, strings.Index(text, `node "n1"`), strings.Index(text, `node "n2"`))
}

func TestHCL_UnsupportedValue(t *testing.T) {
	doc := architecture.GraphDocument{
		Nodes: []architecture.Node{{ID: "n1", Data: map[string]any{"ch": make(chan int)}}},
	}

	_, err := HCL("arch-1", doc)

	assert.ErrorContains(t, err, "unsupported value")
}
