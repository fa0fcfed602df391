package ports

import (
	"context"

	"cloudmap-backend/domain/architecture"
	"cloudmap-backend/domain/events"
)

// ArchitectureStore defines the interface for architecture record persistence.
// This is a port in hexagonal architecture: orchestrators never see the backend.
// Every returned record is a private copy.
type ArchitectureStore interface {
	// Create inserts a new record. Returns architecture.ErrAlreadyExists if id is taken.
	Create(ctx context.Context, id string, record *architecture.Record) error

	// Get returns the current record or architecture.ErrNotFound.
	Get(ctx context.Context, id string) (*architecture.Record, error)

	// Update applies mutate to the current record and stores the result as one
	// atomic step. Concurrent updates are last-write-wins.
	Update(ctx context.Context, id string, mutate architecture.Mutator) (*architecture.Record, error)

	// UpdateIfVersion is Update guarded by the record's version. Returns
	// architecture.ErrVersionConflict when the stored version differs.
	UpdateIfVersion(ctx context.Context, id string, expected int, mutate architecture.Mutator) (*architecture.Record, error)
}

// HealthChecker is implemented by stores that can report readiness
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// IDGenerator produces record identifiers unique for the process lifetime
type IDGenerator interface {
	NextID() string
}

// Stage selects which generation pass a model call belongs to
type Stage string

const (
	// StageGraph produces the architecture graph from a request
	StageGraph Stage = "graph"
	// StageCode produces infrastructure code for an existing graph
	StageCode Stage = "code"
)

// Suggestion is the structured output of a model call.
// Text is the general suggestion field, Code the dedicated code field.
type Suggestion struct {
	Nodes     []architecture.Node
	Edges     []architecture.Edge
	Rationale string
	Text      string
	Code      string
}

// CodeOrText returns the generated code, preferring the dedicated code field
// and falling back to the general suggestion text when it is empty.
func (s *Suggestion) CodeOrText() string {
	if s.Code != "" {
		return s.Code
	}
	return s.Text
}

// ModelClient invokes the generative model. Failures are returned as model
// errors and are not retried by callers.
type ModelClient interface {
	Suggest(ctx context.Context, prompt string, stage Stage) (*Suggestion, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, events []events.DomainEvent) error
}

// MetricsRecorder receives pipeline measurements
type MetricsRecorder interface {
	ArchitectureCreated(nodes, edges int)
	CodeGenerated(codeLength int)
	ModelInvocation(stage string, status string, seconds float64)
	StoreOperation(operation string, status string)
}
