// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"cloudmap-backend/application/ports"
	"cloudmap-backend/domain/architecture"
	"cloudmap-backend/domain/events"
)

// MockArchitectureStore mocks ports.ArchitectureStore
type MockArchitectureStore struct {
	mock.Mock
}

func (m *MockArchitectureStore) Create(ctx context.Context, id string, record *architecture.Record) error {
	args := m.Called(ctx, id, record)
	return args.Error(0)
}

func (m *MockArchitectureStore) Get(ctx context.Context, id string) (*architecture.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*architecture.Record), args.Error(1)
}

// Update runs mutate against the record passed to Return so tests observe the mutator's output.
func (m *MockArchitectureStore) Update(ctx context.Context, id string, mutate architecture.Mutator) (*architecture.Record, error) {
	args := m.Called(ctx, id, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	current := args.Get(0).(*architecture.Record)
	updated := mutate(current.Clone())
	updated.Version = current.Version + 1
	return &updated, args.Error(1)
}

func (m *MockArchitectureStore) UpdateIfVersion(ctx context.Context, id string, expected int, mutate architecture.Mutator) (*architecture.Record, error) {
	args := m.Called(ctx, id, expected, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	current := args.Get(0).(*architecture.Record)
	updated := mutate(current.Clone())
	updated.Version = current.Version + 1
	return &updated, args.Error(1)
}

// MockModelClient mocks ports.ModelClient
type MockModelClient struct {
	mock.Mock
}

func (m *MockModelClient) Suggest(ctx context.Context, prompt string, stage ports.Stage) (*ports.Suggestion, error) {
	args := m.Called(ctx, prompt, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Suggestion), args.Error(1)
}

// MockIDGenerator mocks ports.IDGenerator
type MockIDGenerator struct {
	mock.Mock
}

func (m *MockIDGenerator) NextID() string {
	args := m.Called()
	return args.String(0)
}

// MockEventPublisher mocks ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

// MockMetricsRecorder mocks ports.MetricsRecorder. Calls are recorded but
// only asserted when a test sets expectations.
type MockMetricsRecorder struct {
	mock.Mock
}

func (m *MockMetricsRecorder) ArchitectureCreated(nodes, edges int) {
	m.Called(nodes, edges)
}

func (m *MockMetricsRecorder) CodeGenerated(codeLength int) {
	m.Called(codeLength)
}

func (m *MockMetricsRecorder) ModelInvocation(stage string, status string, seconds float64) {
	m.Called(stage, status, seconds)
}

func (m *MockMetricsRecorder) StoreOperation(operation string, status string) {
	m.Called(operation, status)
}

// NewPermissiveMetricsRecorder returns a recorder that accepts any call
func NewPermissiveMetricsRecorder() *MockMetricsRecorder {
	m := &MockMetricsRecorder{}
	m.On("ArchitectureCreated", mock.Anything, mock.Anything).Maybe()
	m.On("CodeGenerated", mock.Anything).Maybe()
	m.On("ModelInvocation", mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("StoreOperation", mock.Anything, mock.Anything).Maybe()
	return m
}
