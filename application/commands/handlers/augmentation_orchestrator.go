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

// AugmentationOrchestrator runs the second pass: it adds generated code to an
// existing record without touching its graph.
type AugmentationOrchestrator struct {
	store     ports.ArchitectureStore
	model     ports.ModelClient
	publisher ports.EventPublisher
	metrics   ports.MetricsRecorder
	logger    Logger
	now       func() time.Time
}

// NewAugmentationOrchestrator creates a new orchestrator instance
func NewAugmentationOrchestrator(
	store ports.ArchitectureStore,
	model ports.ModelClient,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	logger Logger,
) *AugmentationOrchestrator {
	return &AugmentationOrchestrator{
		store:     store,
		model:     model,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source
func (o *AugmentationOrchestrator) WithClock(now func() time.Time) *AugmentationOrchestrator {
	o.now = now
	return o
}

// Handle implements bus.CommandHandler
func (o *AugmentationOrchestrator) Handle(ctx context.Context, cmd bus.Command) (interface{}, error) {
	c, ok := cmd.(commands.GenerateCodeCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", cmd)
	}
	return o.GenerateCode(ctx, c)
}

// GenerateCode regenerates the record's code and stores it. Every call
// overwrites the previous code; concurrent calls are last-write-wins unless
// ExpectedVersion is set.
func (o *AugmentationOrchestrator) GenerateCode(ctx context.Context, cmd commands.GenerateCodeCommand) (*architecture.Record, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	id := cmd.ArchitectureID

	// Step 1: Read the current record
	current, err := o.store.Get(ctx, id)
	if err != nil {
		o.metrics.StoreOperation("get", "error")
		return nil, mapStoreError(id, "get", err)
	}
	o.metrics.StoreOperation("get", "success")
	if cmd.ExpectedVersion > 0 && current.Version != cmd.ExpectedVersion {
		return nil, versionConflict(id, cmd.ExpectedVersion, current.Version)
	}

	// Step 2: Build the prompt from the current graph
	prompt, err := prompts.Augmentation(*current)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build code prompt").WithCause(err)
	}

	// Step 3: Ask the model for code
	suggestion, err := invokeModel(ctx, o.model, o.metrics, prompt, ports.StageCode)
	if err != nil {
		o.logger.Error("Code generation failed", "error", err, "architectureID", id)
		return nil, err
	}
	code := suggestion.CodeOrText()
	if code == "" {
		return nil, pkgerrors.NewModelError(errors.New("model returned no code"))
	}
	if suggestion.Code == "" {
		o.logger.Debug("Model returned no dedicated code field, using suggestion text", "architectureID", id)
	}

	// Step 4: Merge only the code keys into the stored record
	generatedAt := o.now()
	mutate := func(r architecture.Record) architecture.Record {
		return r.WithCode(code, generatedAt)
	}

	var updated *architecture.Record
	if cmd.ExpectedVersion > 0 {
		updated, err = o.store.UpdateIfVersion(ctx, id, cmd.ExpectedVersion, mutate)
	} else {
		updated, err = o.store.Update(ctx, id, mutate)
	}
	if err != nil {
		o.metrics.StoreOperation("update", "error")
		return nil, mapStoreError(id, "update", err)
	}
	o.metrics.StoreOperation("update", "success")
	o.metrics.CodeGenerated(len(code))

	// Step 5: Publish after commit
	event := events.NewArchitectureCodeGenerated(id, updated.Version, len(code), generatedAt.UTC())
	if err := o.publisher.Publish(ctx, []events.DomainEvent{event}); err != nil {
		o.logger.Warn("Failed to publish domain events",
			"error", err,
			"architectureID", id,
		)
	}

	o.logger.Info("Code generated",
		"architectureID", id,
		"version", updated.Version,
		"codeLength", len(code),
	)

	return updated, nil
}

func versionConflict(id string, expected, actual int) error {
	return pkgerrors.NewConflictError(
		fmt.Sprintf("architecture %s is at version %d, expected %d", id, actual, expected),
	).WithCode(pkgerrors.CodeVersionConflict)
}

func mapStoreError(id, op string, err error) error {
	switch {
	case errors.Is(err, architecture.ErrNotFound):
		return pkgerrors.NewArchitectureNotFoundError(id)
	case errors.Is(err, architecture.ErrVersionConflict):
		return pkgerrors.NewConflictError(fmt.Sprintf("architecture %s was modified concurrently", id)).
			WithCode(pkgerrors.CodeVersionConflict).WithCause(err)
	case pkgerrors.IsAppError(err):
		return err
	default:
		return pkgerrors.NewDatabaseError(op, err)
	}
}
