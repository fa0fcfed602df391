package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloudmap-backend/application/commands"
	"cloudmap-backend/application/commands/bus"
	"cloudmap-backend/application/ports"
	"cloudmap-backend/application/prompts"
	"cloudmap-backend/domain/architecture"
	"cloudmap-backend/domain/events"
	pkgerrors "cloudmap-backend/pkg/errors"
)

// GenerationOrchestrator runs the first pass: request text in, new record stored.
type GenerationOrchestrator struct {
	store     ports.ArchitectureStore
	model     ports.ModelClient
	ids       ports.IDGenerator
	publisher ports.EventPublisher
	metrics   ports.MetricsRecorder
	logger    Logger
	now       func() time.Time
}

// NewGenerationOrchestrator creates a new orchestrator instance
func NewGenerationOrchestrator(
	store ports.ArchitectureStore,
	model ports.ModelClient,
	ids ports.IDGenerator,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	logger Logger,
) *GenerationOrchestrator {
	return &GenerationOrchestrator{
		store:     store,
		model:     model,
		ids:       ids,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source
func (o *GenerationOrchestrator) WithClock(now func() time.Time) *GenerationOrchestrator {
	o.now = now
	return o
}

// Handle implements bus.CommandHandler
func (o *GenerationOrchestrator) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(commands.CreateArchitectureCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", cmd)
	}
	return o.CreateArchitecture(ctx, c)
}

// CreateArchitecture generates and stores a new record. Nothing is stored
// unless the model call succeeds.
func (o *GenerationOrchestrator) CreateArchitecture(ctx context.Context, cmd commands.CreateArchitectureCommand) (*architecture.Record, error) {
	// Step 1: Validate the request
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Ask the model for a graph
	suggestion, err := invokeModel(ctx, o.model, o.metrics, prompts.Generation(cmd.RequestText), ports.StageGraph)
	if err != nil {
		o.logger.Error("Architecture generation failed", "error", err)
		return nil, err
	}
	if len(suggestion.Nodes) == 0 {
		return nil, pkgerrors.NewModelError(errors.New("model returned an architecture without nodes"))
	}

	// Step 3: Assemble the record under a fresh id
	id := o.ids.NextID()
	record := architecture.NewRecord(id, cmd.RequestText, suggestion.Rationale,
		suggestion.Nodes, suggestion.Edges, o.now().UTC())

	// Step 4: Commit
	if err := o.store.Create(ctx, id, record); err != nil {
		o.metrics.StoreOperation("create", "error")
		if errors.Is(err, architecture.ErrAlreadyExists) {
			return nil, pkgerrors.NewConflictError(fmt.Sprintf("architecture %s already exists", id)).
				WithCode(pkgerrors.CodeAlreadyExists).WithCause(err)
		}
		return nil, pkgerrors.NewDatabaseError("create", err)
	}
	o.metrics.StoreOperation("create", "success")
	o.metrics.ArchitectureCreated(len(record.Nodes), len(record.Edges))

	// Step 5: Publish after commit; a failed publish never fails the request
	event := events.NewArchitectureCreated(id, len(record.Nodes), len(record.Edges), cmd.RequestText, record.CreatedAt)
	if err := o.publisher.Publish(ctx, []events.DomainEvent{event}); err != nil {
		o.logger.Warn("Failed to publish domain events",
			"error", err,
			"architectureID", id,
		)
	}

	o.logger.Info("Architecture created",
		"architectureID", id,
		"nodes", len(record.Nodes),
		"edges", len(record.Edges),
	)

	return record, nil
}
