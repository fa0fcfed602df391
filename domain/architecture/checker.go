package architecture

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Severity of a checker issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue kinds reported by Check.
const (
	IssueEmptyNodeID     = "empty_node_id"
	IssueDuplicateNodeID = "duplicate_node_id"
	IssueEmptyEdgeID     = "empty_edge_id"
	IssueDuplicateEdgeID = "duplicate_edge_id"
	IssueMissingEndpoint = "missing_endpoint"
	IssueDanglingSource  = "dangling_source"
	IssueDanglingTarget  = "dangling_target"
	IssueSelfLoop        = "self_loop"
	IssueIsolatedNode    = "isolated_node"
	IssueDisconnected    = "disconnected_graph"
	IssueCycle           = "cycle"
)

// Issue is a single checker finding.
type Issue struct {
	Kind       string   `json:"kind"`
	Severity   Severity `json:"severity"`
	NodeID     string   `json:"nodeId,omitempty"`
	EdgeID     string   `json:"edgeId,omitempty"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Report is the result of checking a graph.
type Report struct {
	Valid      bool    `json:"valid"`
	Errors     int     `json:"errors"`
	Warnings   int     `json:"warnings"`
	Components int     `json:"components"`
	Issues     []Issue `json:"issues"`
}

func (r *Report) add(issue Issue) {
	switch issue.Severity {
	case SeverityError:
		r.Errors++
	case SeverityWarning:
		r.Warnings++
	}
	r.Issues = append(r.Issues, issue)
}

// Check inspects a graph for referential problems. It is a separate layer:
// the pipeline stores graphs whether or not they pass.
func Check(nodes []Node, edges []Edge) Report {
	report := Report{Issues: []Issue{}}

	g := simple.NewUndirectedGraph()
	dg := simple.NewDirectedGraph()
	ids := make(map[string]int64, len(nodes))
	names := make(map[int64]string, len(nodes))

	for i, n := range nodes {
		if n.ID == "" {
			report.add(Issue{
				Kind: IssueEmptyNodeID, Severity: SeverityError,
				Message:    fmt.Sprintf("node at index %d has empty id", i),
				Suggestion: "Set node.id",
			})
			continue
		}
		if _, seen := ids[n.ID]; seen {
			report.add(Issue{
				Kind: IssueDuplicateNodeID, Severity: SeverityError, NodeID: n.ID,
				Message:    "duplicate node id: " + n.ID,
				Suggestion: "Use unique ids for each node",
			})
			continue
		}
		gid := int64(len(ids))
		ids[n.ID] = gid
		names[gid] = n.ID
		g.AddNode(simple.Node(gid))
		dg.AddNode(simple.Node(gid))
	}

	seenEdges := make(map[string]bool, len(edges))
	degree := make(map[int64]int, len(ids))
	for i, e := range edges {
		switch {
		case e.ID == "":
			report.add(Issue{
				Kind: IssueEmptyEdgeID, Severity: SeverityWarning,
				Message: fmt.Sprintf("edge at index %d has empty id", i),
			})
		case seenEdges[e.ID]:
			report.add(Issue{
				Kind: IssueDuplicateEdgeID, Severity: SeverityError, EdgeID: e.ID,
				Message:    "duplicate edge id: " + e.ID,
				Suggestion: "Use unique ids for each edge",
			})
		default:
			seenEdges[e.ID] = true
		}

		if e.Source == "" || e.Target == "" {
			report.add(Issue{
				Kind: IssueMissingEndpoint, Severity: SeverityError, EdgeID: e.ID,
				Message:    fmt.Sprintf("edge at index %d must have source and target", i),
				Suggestion: "Set edge.source and edge.target to node ids",
			})
			continue
		}
		src, srcOK := ids[e.Source]
		dst, dstOK := ids[e.Target]
		if !srcOK {
			report.add(Issue{
				Kind: IssueDanglingSource, Severity: SeverityError, EdgeID: e.ID,
				Message:    "edge source node not found: " + e.Source,
				Suggestion: "Reference an existing node id",
			})
		}
		if !dstOK {
			report.add(Issue{
				Kind: IssueDanglingTarget, Severity: SeverityError, EdgeID: e.ID,
				Message:    "edge target node not found: " + e.Target,
				Suggestion: "Reference an existing node id",
			})
		}
		if !srcOK || !dstOK {
			continue
		}
		degree[src]++
		degree[dst]++
		// simple graphs panic on self edges.
		if src == dst {
			report.add(Issue{
				Kind: IssueSelfLoop, Severity: SeverityWarning, EdgeID: e.ID, NodeID: e.Source,
				Message: "edge connects node to itself: " + e.Source,
			})
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(src), simple.Node(dst)))
		if !dg.HasEdgeFromTo(src, dst) {
			dg.SetEdge(dg.NewEdge(simple.Node(src), simple.Node(dst)))
		}
	}

	for gid := int64(0); gid < int64(len(ids)); gid++ {
		if degree[gid] == 0 && len(ids) > 1 {
			report.add(Issue{
				Kind: IssueIsolatedNode, Severity: SeverityWarning, NodeID: names[gid],
				Message:    "node has no connections: " + names[gid],
				Suggestion: "Connect the node or remove it",
			})
		}
	}

	components := topo.ConnectedComponents(g)
	report.Components = len(components)
	if len(components) > 1 {
		report.add(Issue{
			Kind: IssueDisconnected, Severity: SeverityWarning,
			Message: fmt.Sprintf("graph has %d disconnected components", len(components)),
		})
	}

	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) < 2 {
			continue
		}
		members := make([]string, 0, len(scc))
		for _, n := range scc {
			members = append(members, names[n.ID()])
		}
		sort.Strings(members)
		report.add(Issue{
			Kind: IssueCycle, Severity: SeverityInfo,
			Message: "nodes form a cycle: " + strings.Join(members, ", "),
		})
	}

	report.Valid = report.Errors == 0
	return report
}

// CheckRecord runs Check on a record's graph.
func CheckRecord(r Record) Report {
	return Check(r.Nodes, r.Edges)
}
