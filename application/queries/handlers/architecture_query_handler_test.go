package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cloudmap-backend/application/ports/mocks"
	"cloudmap-backend/application/queries"
	"cloudmap-backend/application/queries/bus"
	"cloudmap-backend/domain/architecture"
	pkgerrors "cloudmap-backend/pkg/errors"
)

func storedRecord() *architecture.Record {
	return architecture.NewRecord("arch-1", "A web API", "why",
		[]architecture.Node{{ID: "n1"}, {ID: "n2"}},
		[]architecture.Edge{{ID: "e1", Source: "n1", Target: "missing"}},
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	)
}

func TestArchitectureQueryHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return the stored record", func(t *testing.T) {
		// Arrange
		store := new(mocks.MockArchitectureStore)
		store.On("Get", ctx, "arch-1").Return(storedRecord(), nil)
		handler := NewArchitectureQueryHandler(store, zap.NewNop())

		// Act
		record, err := handler.GetArchitecture(ctx, queries.GetArchitectureQuery{ID: "arch-1"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, storedRecord(), record)
		store.AssertExpectations(t)
	})

	t.Run("Should map a missing record to not found naming the id", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		store.On("Get", ctx, "ghost").Return(nil, architecture.ErrNotFound)
		handler := NewArchitectureQueryHandler(store, zap.NewNop())

		_, err := handler.GetArchitecture(ctx, queries.GetArchitectureQuery{ID: "ghost"})

		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotFound(err))
		assert.Contains(t, pkgerrors.GetAppError(err).Message, "ghost")
	})

	t.Run("Should map other store failures to a database error", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		store.On("Get", ctx, "arch-1").Return(nil, errors.New("disk on fire"))
		handler := NewArchitectureQueryHandler(store, zap.NewNop())

		_, err := handler.GetArchitecture(ctx, queries.GetArchitectureQuery{ID: "arch-1"})

		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
	})

	t.Run("Should project the graph document", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		store.On("Get", ctx, "arch-1").Return(storedRecord(), nil)
		handler := NewArchitectureQueryHandler(store, zap.NewNop())

		result, err := handler.ExportArchitecture(ctx, queries.ExportArchitectureQuery{ID: "arch-1"})

		require.NoError(t, err)
		assert.Equal(t, "arch-1", result.ID)
		assert.Equal(t, storedRecord().Document(), result.Document)
	})

	t.Run("Should report no code yet instead of an empty string", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		store.On("Get", ctx, "arch-1").Return(storedRecord(), nil)
		handler := NewArchitectureQueryHandler(store, zap.NewNop())

		result, err := handler.ExportCode(ctx, queries.ExportCodeQuery{ID: "arch-1"})

		assert.Nil(t, result)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNoCodeYet))
		assert.Equal(t, 409, pkgerrors.GetAppError(err).HTTPStatus)
	})

	t.Run("Should return generated code", func(t *testing.T) {
		rec := storedRecord().WithCode("new cdk.App();", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
		store := new(mocks.MockArchitectureStore)
		store.On("Get", ctx, "arch-1").Return(&rec, nil)
		handler := NewArchitectureQueryHandler(store, zap.NewNop())

		result, err := handler.ExportCode(ctx, queries.ExportCodeQuery{ID: "arch-1"})

		require.NoError(t, err)
		assert.Equal(t, "new cdk.App();", result.CDKCode)
		assert.Equal(t, "2025-01-02T00:00:00Z", result.GeneratedAt)
	})

	t.Run("Should run the checker", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		store.On("Get", ctx, "arch-1").Return(storedRecord(), nil)
		handler := NewArchitectureQueryHandler(store, zap.NewNop())

		result, err := handler.CheckArchitecture(ctx, queries.CheckArchitectureQuery{ID: "arch-1"})

		require.NoError(t, err)
		assert.False(t, result.Report.Valid)
		assert.Equal(t, architecture.IssueDanglingTarget, result.Report.Issues[0].Kind)
	})
}

func TestArchitectureQueryHandler_ThroughBus(t *testing.T) {
	ctx := context.Background()
	store := new(mocks.MockArchitectureStore)
	store.On("Get", ctx, "arch-1").Return(storedRecord(), nil)
	handler := NewArchitectureQueryHandler(store, zap.NewNop())
	queryBus := bus.NewQueryBus()
	require.NoError(t, handler.Register(queryBus))

	result, err := queryBus.Ask(ctx, queries.GetArchitectureQuery{ID: "arch-1"})
	require.NoError(t, err)
	assert.Equal(t, "arch-1", result.(*architecture.Record).ID)

	_, err = queryBus.Ask(ctx, queries.GetArchitectureQuery{})
	assert.True(t, pkgerrors.IsValidation(err))
}
