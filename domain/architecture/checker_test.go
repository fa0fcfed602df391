package architecture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func kinds(r Report) []string {
	out := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		out = append(out, i.Kind)
	}
	return out
}

func TestCheck(t *testing.T) {
	t.Run("Should accept a connected graph", func(t *testing.T) {
		report := Check(
			[]Node{{ID: "n1"}, {ID: "n2"}, {ID: "n3"}},
			[]Edge{{ID: "e1", Source: "n1", Target: "n2"}, {ID: "e2", Source: "n2", Target: "n3"}},
		)

		assert.True(t, report.Valid)
		assert.Equal(t, 0, report.Errors)
		assert.Equal(t, 0, report.Warnings)
		assert.Equal(t, 1, report.Components)
		assert.Empty(t, report.Issues)
	})

	t.Run("Should report dangling edge endpoints", func(t *testing.T) {
		report := Check(
			[]Node{{ID: "n1"}},
			[]Edge{{ID: "e1", Source: "n1", Target: "ghost"}, {ID: "e2", Source: "nobody", Target: "n1"}},
		)

		assert.False(t, report.Valid)
		assert.Equal(t, 2, report.Errors)
		assert.Contains(t, kinds(report), IssueDanglingTarget)
		assert.Contains(t, kinds(report), IssueDanglingSource)
	})

	t.Run("Should report duplicate and empty ids", func(t *testing.T) {
		report := Check(
			[]Node{{ID: "n1"}, {ID: "n1"}, {ID: ""}},
			[]Edge{{ID: "e1", Source: "n1", Target: "n1"}, {ID: "e1", Source: "", Target: "n1"}},
		)

		assert.False(t, report.Valid)
		ks := kinds(report)
		assert.Contains(t, ks, IssueDuplicateNodeID)
		assert.Contains(t, ks, IssueEmptyNodeID)
		assert.Contains(t, ks, IssueDuplicateEdgeID)
		assert.Contains(t, ks, IssueMissingEndpoint)
		assert.Contains(t, ks, IssueSelfLoop)
	})

	t.Run("Should warn about disconnected parts", func(t *testing.T) {
		report := Check(
			[]Node{{ID: "n1"}, {ID: "n2"}, {ID: "n3"}},
			[]Edge{{ID: "e1", Source: "n1", Target: "n2"}},
		)

		assert.True(t, report.Valid)
		assert.Equal(t, 2, report.Components)
		assert.Equal(t, 2, report.Warnings)
		assert.Contains(t, kinds(report), IssueIsolatedNode)
		assert.Contains(t, kinds(report), IssueDisconnected)
	})

	t.Run("Should note cycles without failing", func(t *testing.T) {
		report := Check(
			[]Node{{ID: "a"}, {ID: "b"}},
			[]Edge{{ID: "e1", Source: "a", Target: "b"}, {ID: "e2", Source: "b", Target: "a"}},
		)

		assert.True(t, report.Valid)
		assert.Equal(t, []string{IssueCycle}, kinds(report))
		assert.Equal(t, "nodes form a cycle: a, b", report.Issues[0].Message)
	})

	t.Run("Should accept an empty graph", func(t *testing.T) {
		report := Check(nil, nil)

		assert.True(t, report.Valid)
		assert.NotNil(t, report.Issues)
	})
}
