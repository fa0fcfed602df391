package architecture

import (
	"errors"
	"time"
)

// Metadata keys written by the pipeline.
const (
	MetaPrompt         = "prompt"
	MetaRationale      = "rationale"
	MetaCDKCode        = "cdkCode"
	MetaCDKGeneratedAt = "cdkGeneratedAt"
)

// Store outcomes. Callers match them with errors.Is and map them to user-facing errors.
var (
	ErrNotFound        = errors.New("architecture not found")
	ErrAlreadyExists   = errors.New("architecture already exists")
	ErrVersionConflict = errors.New("architecture version conflict")
)

// Position is a presentational 2D coordinate. The zero value is the origin.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one architectural component. Data is forwarded verbatim; the pipeline
// never inspects it.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type,omitempty"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data,omitempty"`
}

// Edge is a directed connection between two nodes. Source and Target are not
// checked against the node list here; see Check.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Metadata is the open key/value bag attached to a record.
type Metadata map[string]any

// String returns the value under key when it is a string.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Prompt is the original natural-language request.
func (m Metadata) Prompt() string {
	s, _ := m.String(MetaPrompt)
	return s
}

// Rationale is the model's explanation of the generated graph.
func (m Metadata) Rationale() string {
	s, _ := m.String(MetaRationale)
	return s
}

// CDKCode returns the generated code and whether any was generated. An empty
// string is reported as absent.
func (m Metadata) CDKCode() (string, bool) {
	s, ok := m.String(MetaCDKCode)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Record is the unit of persistence: a graph plus metadata under one identifier.
type Record struct {
	ID        string    `json:"id"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	Metadata  Metadata  `json:"metadata"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewRecord assembles a fresh record at version 1. Nil slices become empty so
// the JSON form always carries arrays.
func NewRecord(id, prompt, rationale string, nodes []Node, edges []Edge, now time.Time) *Record {
	if nodes == nil {
		nodes = []Node{}
	}
	if edges == nil {
		edges = []Edge{}
	}
	return &Record{
		ID:    id,
		Nodes: nodes,
		Edges: edges,
		Metadata: Metadata{
			MetaPrompt:    prompt,
			MetaRationale: rationale,
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithCode returns a copy of r whose metadata carries code and its generation
// time. Nodes, edges and every other metadata key are left as they were.
func (r Record) WithCode(code string, generatedAt time.Time) Record {
	out := r.Clone()
	if out.Metadata == nil {
		out.Metadata = Metadata{}
	}
	out.Metadata[MetaCDKCode] = code
	out.Metadata[MetaCDKGeneratedAt] = generatedAt.UTC().Format(time.RFC3339)
	return out
}

// Document projects the record onto its exportable graph document.
func (r Record) Document() GraphDocument {
	c := r.Clone()
	return GraphDocument{
		Nodes:    c.Nodes,
		Edges:    c.Edges,
		Metadata: c.Metadata,
	}
}

// GraphDocument is the standalone export form of a record.
type GraphDocument struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Metadata Metadata `json:"metadata"`
}

// Mutator transforms a record inside a store update. It receives a private
// copy and returns the value to persist.
type Mutator func(Record) Record
