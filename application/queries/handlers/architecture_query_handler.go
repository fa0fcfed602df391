package handlers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cloudmap-backend/application/ports"
	"cloudmap-backend/application/queries"
	"cloudmap-backend/application/queries/bus"
	"cloudmap-backend/domain/architecture"
	pkgerrors "cloudmap-backend/pkg/errors"
)

// ArchitectureQueryHandler serves the read-only architecture queries
type ArchitectureQueryHandler struct {
	store  ports.ArchitectureStore
	logger *zap.Logger
}

// NewArchitectureQueryHandler creates a new query handler
func NewArchitectureQueryHandler(store ports.ArchitectureStore, logger *zap.Logger) *ArchitectureQueryHandler {
	return &ArchitectureQueryHandler{
		store:  store,
		logger: logger,
	}
}

// Handle implements bus.QueryHandler for every architecture query type
func (h *ArchitectureQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.GetArchitectureQuery:
		return h.GetArchitecture(ctx, q)
	case queries.ExportArchitectureQuery:
		return h.ExportArchitecture(ctx, q)
	case queries.ExportCodeQuery:
		return h.ExportCode(ctx, q)
	case queries.CheckArchitectureQuery:
		return h.CheckArchitecture(ctx, q)
	default:
		return nil, fmt.Errorf("unexpected query type %T", query)
	}
}

// Register registers the handler for all architecture queries
func (h *ArchitectureQueryHandler) Register(b *bus.QueryBus) error {
	for _, q := range []bus.Query{
		queries.GetArchitectureQuery{},
		queries.ExportArchitectureQuery{},
		queries.ExportCodeQuery{},
		queries.CheckArchitectureQuery{},
	} {
		if err := b.Register(q, h); err != nil {
			return err
		}
	}
	return nil
}

// GetArchitecture returns the full record
func (h *ArchitectureQueryHandler) GetArchitecture(ctx context.Context, q queries.GetArchitectureQuery) (*architecture.Record, error) {
	return h.load(ctx, q.ID)
}

// ExportArchitecture returns the graph document projection
func (h *ArchitectureQueryHandler) ExportArchitecture(ctx context.Context, q queries.ExportArchitectureQuery) (*queries.ExportArchitectureResult, error) {
	record, err := h.load(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	return &queries.ExportArchitectureResult{
		ID:       record.ID,
		Document: record.Document(),
	}, nil
}

// ExportCode returns the generated code, or a NO_CODE_YET conflict when the
// record has none.
func (h *ArchitectureQueryHandler) ExportCode(ctx context.Context, q queries.ExportCodeQuery) (*queries.ExportCodeResult, error) {
	record, err := h.load(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	code, ok := record.Metadata.CDKCode()
	if !ok {
		return nil, pkgerrors.NewNoCodeYetError(q.ID)
	}
	generatedAt, _ := record.Metadata.String(architecture.MetaCDKGeneratedAt)
	return &queries.ExportCodeResult{
		ID:          record.ID,
		CDKCode:     code,
		GeneratedAt: generatedAt,
	}, nil
}

// CheckArchitecture runs the graph checker on a stored record
func (h *ArchitectureQueryHandler) CheckArchitecture(ctx context.Context, q queries.CheckArchitectureQuery) (*queries.CheckArchitectureResult, error) {
	record, err := h.load(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	report := architecture.CheckRecord(*record)
	h.logger.Debug("Architecture checked",
		zap.String("architectureID", q.ID),
		zap.Int("errors", report.Errors),
		zap.Int("warnings", report.Warnings),
	)
	return &queries.CheckArchitectureResult{ID: record.ID, Report: report}, nil
}

func (h *ArchitectureQueryHandler) load(ctx context.Context, id string) (*architecture.Record, error) {
	record, err := h.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, architecture.ErrNotFound) {
			return nil, pkgerrors.NewArchitectureNotFoundError(id)
		}
		h.logger.Error("Failed to load architecture", zap.String("architectureID", id), zap.Error(err))
		return nil, pkgerrors.NewDatabaseError("get", err)
	}
	return record, nil
}
