// Package idgen produces architecture identifiers.
package idgen

import "github.com/google/uuid"

// UUIDGenerator issues random (version 4) UUIDs
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new generator
func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

// NextID implements ports.IDGenerator
func (UUIDGenerator) NextID() string {
	return uuid.NewString()
}
