package events

import (
	"time"
)

// Event types published by the pipeline.
const (
	TypeArchitectureCreated       = "architecture.created"
	TypeArchitectureCodeGenerated = "architecture.code_generated"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// ArchitectureCreated is raised after a new record is committed
type ArchitectureCreated struct {
	BaseEvent
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
	Prompt    string `json:"prompt"`
}

// NewArchitectureCreated creates an ArchitectureCreated event
func NewArchitectureCreated(id string, nodes, edges int, prompt string, timestamp time.Time) ArchitectureCreated {
	return ArchitectureCreated{
		BaseEvent: BaseEvent{
			AggregateID: id,
			EventType:   TypeArchitectureCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeCount: nodes,
		EdgeCount: edges,
		Prompt:    prompt,
	}
}

// ArchitectureCodeGenerated is raised after generated code is merged into a record
type ArchitectureCodeGenerated struct {
	BaseEvent
	CodeLength int `json:"code_length"`
}

// NewArchitectureCodeGenerated creates an ArchitectureCodeGenerated event.
// version is the record version after the update.
func NewArchitectureCodeGenerated(id string, version, codeLength int, timestamp time.Time) ArchitectureCodeGenerated {
	return ArchitectureCodeGenerated{
		BaseEvent: BaseEvent{
			AggregateID: id,
			EventType:   TypeArchitectureCodeGenerated,
			Timestamp:   timestamp,
			Version:     version,
		},
		CodeLength: codeLength,
	}
}
