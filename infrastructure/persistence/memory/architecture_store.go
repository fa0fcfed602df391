package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloudmap-backend/domain/architecture"
)

// ArchitectureStore keeps records in process memory. Contents are lost when
// the process exits.
type ArchitectureStore struct {
	mu      sync.RWMutex
	records map[string]architecture.Record
	now     func() time.Time
}

// NewArchitectureStore creates an empty in-memory store
func NewArchitectureStore() *ArchitectureStore {
	return &ArchitectureStore{
		records: make(map[string]architecture.Record),
		now:     time.Now,
	}
}

// Create inserts a new record
func (s *ArchitectureStore) Create(ctx context.Context, id string, record *architecture.Record) error {
	if record == nil || id == "" {
		return fmt.Errorf("invalid architecture record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; exists {
		return fmt.Errorf("%w: %s", architecture.ErrAlreadyExists, id)
	}

	stored := record.Clone()
	stored.ID = id
	if stored.Version == 0 {
		stored.Version = 1
	}
	s.records[id] = stored
	return nil
}

// Get retrieves a copy of the record
func (s *ArchitectureStore) Get(ctx context.Context, id string) (*architecture.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", architecture.ErrNotFound, id)
	}

	out := record.Clone()
	return &out, nil
}

// Update applies mutate under the write lock, so each call is one atomic
// read-modify-write.
func (s *ArchitectureStore) Update(ctx context.Context, id string, mutate architecture.Mutator) (*architecture.Record, error) {
	return s.update(id, -1, mutate)
}

// UpdateIfVersion is Update guarded by the stored version
func (s *ArchitectureStore) UpdateIfVersion(ctx context.Context, id string, expected int, mutate architecture.Mutator) (*architecture.Record, error) {
	return s.update(id, expected, mutate)
}

func (s *ArchitectureStore) update(id string, expected int, mutate architecture.Mutator) (*architecture.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.records[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", architecture.ErrNotFound, id)
	}
	if expected >= 0 && current.Version != expected {
		return nil, fmt.Errorf("%w: %s at version %d, expected %d",
			architecture.ErrVersionConflict, id, current.Version, expected)
	}

	next := mutate(current.Clone())
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.Version = current.Version + 1
	next.UpdatedAt = s.now().UTC()

	s.records[id] = next.Clone()
	return &next, nil
}

// Ping always succeeds
func (s *ArchitectureStore) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored records
func (s *ArchitectureStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
