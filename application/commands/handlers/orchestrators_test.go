package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cloudmap-backend/application/commands"
	"cloudmap-backend/application/ports"
	"cloudmap-backend/application/ports/mocks"
	"cloudmap-backend/domain/architecture"
	"cloudmap-backend/infrastructure/persistence/memory"
	pkgerrors "cloudmap-backend/pkg/errors"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func webAPISuggestion() *ports.Suggestion {
	return &ports.Suggestion{
		Nodes: []architecture.Node{
			{ID: "n1", Type: "awsService", Data: map[string]any{"label": "API", "service": "API Gateway"}},
			{ID: "n2", Type: "awsService", Position: architecture.Position{X: 250}, Data: map[string]any{"label": "Table", "service": "DynamoDB"}},
		},
		Edges:     []architecture.Edge{{ID: "e1", Source: "n1", Target: "n2"}},
		Rationale: "API Gateway fronts a DynamoDB table.",
	}
}

type sequenceIDs struct{ n int }

func (s *sequenceIDs) NextID() string {
	s.n++
	return fmt.Sprintf("arch-%d", s.n)
}

func TestGenerationOrchestrator_CreateArchitecture(t *testing.T) {
	ctx := context.Background()

	t.Run("Should store and return the model's graph verbatim", func(t *testing.T) {
		// Arrange
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		ids := new(mocks.MockIDGenerator)
		publisher := new(mocks.MockEventPublisher)

		model.On("Suggest", mock.Anything, mock.AnythingOfType("string"), ports.StageGraph).Return(webAPISuggestion(), nil)
		ids.On("NextID").Return("arch-1")
		store.On("Create", mock.Anything, "arch-1", mock.AnythingOfType("*architecture.Record")).Return(nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		o := NewGenerationOrchestrator(store, model, ids, publisher, mocks.NewPermissiveMetricsRecorder(), nopLogger{}).
			WithClock(func() time.Time { return fixedNow })

		// Act
		record, err := o.CreateArchitecture(ctx, commands.NewCreateArchitectureCommand("  A web API with a database "))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "arch-1", record.ID)
		assert.Equal(t, webAPISuggestion().Nodes, record.Nodes)
		assert.Equal(t, webAPISuggestion().Edges, record.Edges)
		assert.Equal(t, "A web API with a database", record.Metadata.Prompt())
		assert.Equal(t, "API Gateway fronts a DynamoDB table.", record.Metadata.Rationale())
		assert.Equal(t, 1, record.Version)
		assert.Equal(t, fixedNow, record.CreatedAt)
		prompt := model.Calls[0].Arguments.String(1)
		assert.Contains(t, prompt, "A web API with a database")
		store.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("Should reject empty requests without calling the model", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		o := NewGenerationOrchestrator(store, model, new(mocks.MockIDGenerator), new(mocks.MockEventPublisher),
			mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		_, err := o.CreateArchitecture(ctx, commands.NewCreateArchitectureCommand("   "))

		assert.True(t, pkgerrors.IsValidation(err))
		model.AssertNotCalled(t, "Suggest", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should commit nothing when the model fails", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		ids := new(mocks.MockIDGenerator)
		model.On("Suggest", mock.Anything, mock.Anything, ports.StageGraph).Return(nil, errors.New("throttled"))
		o := NewGenerationOrchestrator(store, model, ids, new(mocks.MockEventPublisher),
			mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		record, err := o.CreateArchitecture(ctx, commands.NewCreateArchitectureCommand("A queue"))

		assert.Nil(t, record)
		assert.True(t, pkgerrors.IsModelError(err))
		assert.Contains(t, pkgerrors.GetAppError(err).Message, "throttled")
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		ids.AssertNotCalled(t, "NextID")
	})

	t.Run("Should treat an empty graph as a model failure", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		model.On("Suggest", mock.Anything, mock.Anything, ports.StageGraph).Return(&ports.Suggestion{Rationale: "?"}, nil)
		o := NewGenerationOrchestrator(store, model, new(mocks.MockIDGenerator), new(mocks.MockEventPublisher),
			mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		_, err := o.CreateArchitecture(ctx, commands.NewCreateArchitectureCommand("A queue"))

		assert.True(t, pkgerrors.IsModelError(err))
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should succeed when publishing fails", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		ids := new(mocks.MockIDGenerator)
		publisher := new(mocks.MockEventPublisher)
		model.On("Suggest", mock.Anything, mock.Anything, ports.StageGraph).Return(webAPISuggestion(), nil)
		ids.On("NextID").Return("arch-1")
		store.On("Create", mock.Anything, "arch-1", mock.Anything).Return(nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus down"))
		o := NewGenerationOrchestrator(store, model, ids, publisher, mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		record, err := o.CreateArchitecture(ctx, commands.NewCreateArchitectureCommand("A web API"))

		require.NoError(t, err)
		assert.Equal(t, "arch-1", record.ID)
	})

	t.Run("Should map id collisions to a conflict", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		ids := new(mocks.MockIDGenerator)
		model.On("Suggest", mock.Anything, mock.Anything, ports.StageGraph).Return(webAPISuggestion(), nil)
		ids.On("NextID").Return("arch-1")
		store.On("Create", mock.Anything, "arch-1", mock.Anything).Return(architecture.ErrAlreadyExists)
		o := NewGenerationOrchestrator(store, model, ids, new(mocks.MockEventPublisher),
			mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		_, err := o.CreateArchitecture(ctx, commands.NewCreateArchitectureCommand("A web API"))

		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAlreadyExists))
	})
}

func TestAugmentationOrchestrator_GenerateCode(t *testing.T) {
	ctx := context.Background()
	existing := func() *architecture.Record {
		s := webAPISuggestion()
		r := architecture.NewRecord("arch-1", "A web API with a database", s.Rationale, s.Nodes, s.Edges, fixedNow)
		r.Metadata["owner"] = "platform"
		return r
	}

	t.Run("Should merge only the code keys", func(t *testing.T) {
		// Arrange
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		publisher := new(mocks.MockEventPublisher)
		store.On("Get", mock.Anything, "arch-1").Return(existing(), nil)
		store.On("Update", mock.Anything, "arch-1", mock.Anything).Return(existing(), nil)
		model.On("Suggest", mock.Anything, mock.Anything, ports.StageCode).
			Return(&ports.Suggestion{Code: "new cdk.App();", Text: "ignored"}, nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
		generatedAt := fixedNow.Add(time.Hour)
		o := NewAugmentationOrchestrator(store, model, publisher, mocks.NewPermissiveMetricsRecorder(), nopLogger{}).
			WithClock(func() time.Time { return generatedAt })

		// Act
		updated, err := o.GenerateCode(ctx, commands.GenerateCodeCommand{ArchitectureID: "arch-1"})

		// Assert
		require.NoError(t, err)
		code, ok := updated.Metadata.CDKCode()
		require.True(t, ok)
		assert.Equal(t, "new cdk.App();", code)
		assert.Equal(t, "2025-03-01T11:00:00Z", updated.Metadata[architecture.MetaCDKGeneratedAt])
		assert.Equal(t, existing().Nodes, updated.Nodes)
		assert.Equal(t, existing().Edges, updated.Edges)
		assert.Equal(t, "platform", updated.Metadata["owner"])
		assert.Equal(t, "A web API with a database", updated.Metadata.Prompt())
		prompt := model.Calls[0].Arguments.String(1)
		assert.Contains(t, prompt, `"service": "DynamoDB"`)
		store.AssertExpectations(t)
	})

	t.Run("Should fall back to the suggestion text", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		publisher := new(mocks.MockEventPublisher)
		store.On("Get", mock.Anything, "arch-1").Return(existing(), nil)
		store.On("Update", mock.Anything, "arch-1", mock.Anything).Return(existing(), nil)
		model.On("Suggest", mock.Anything, mock.Anything, ports.StageCode).Return(&ports.Suggestion{Text: "text body"}, nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
		o := NewAugmentationOrchestrator(store, model, publisher, mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		updated, err := o.GenerateCode(ctx, commands.GenerateCodeCommand{ArchitectureID: "arch-1"})

		require.NoError(t, err)
		assert.Equal(t, "text body", updated.Metadata[architecture.MetaCDKCode])
	})

	t.Run("Should return not found without calling the model or writing", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		store.On("Get", mock.Anything, "ghost").Return(nil, architecture.ErrNotFound)
		o := NewAugmentationOrchestrator(store, model, new(mocks.MockEventPublisher), mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		_, err := o.GenerateCode(ctx, commands.GenerateCodeCommand{ArchitectureID: "ghost"})

		assert.True(t, pkgerrors.IsNotFound(err))
		assert.Contains(t, pkgerrors.GetAppError(err).Message, "ghost")
		model.AssertNotCalled(t, "Suggest", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "UpdateIfVersion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should not write when the model fails", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		store.On("Get", mock.Anything, "arch-1").Return(existing(), nil)
		model.On("Suggest", mock.Anything, mock.Anything, ports.StageCode).Return(nil, context.DeadlineExceeded)
		o := NewAugmentationOrchestrator(store, model, new(mocks.MockEventPublisher), mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		_, err := o.GenerateCode(ctx, commands.GenerateCodeCommand{ArchitectureID: "arch-1"})

		assert.True(t, pkgerrors.IsModelError(err))
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should treat an empty code suggestion as a model failure", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		store.On("Get", mock.Anything, "arch-1").Return(existing(), nil)
		model.On("Suggest", mock.Anything, mock.Anything, ports.StageCode).Return(&ports.Suggestion{}, nil)
		o := NewAugmentationOrchestrator(store, model, new(mocks.MockEventPublisher), mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		_, err := o.GenerateCode(ctx, commands.GenerateCodeCommand{ArchitectureID: "arch-1"})

		assert.True(t, pkgerrors.IsModelError(err))
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should require an id", func(t *testing.T) {
		o := NewAugmentationOrchestrator(new(mocks.MockArchitectureStore), new(mocks.MockModelClient),
			new(mocks.MockEventPublisher), mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		_, err := o.GenerateCode(ctx, commands.GenerateCodeCommand{})

		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("Should reject a stale expected version before calling the model", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		store.On("Get", mock.Anything, "arch-1").Return(existing(), nil)
		o := NewAugmentationOrchestrator(store, model, new(mocks.MockEventPublisher), mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		_, err := o.GenerateCode(ctx, commands.GenerateCodeCommand{ArchitectureID: "arch-1", ExpectedVersion: 7})

		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeVersionConflict))
		model.AssertNotCalled(t, "Suggest", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should use the versioned update when an expected version is given", func(t *testing.T) {
		store := new(mocks.MockArchitectureStore)
		model := new(mocks.MockModelClient)
		publisher := new(mocks.MockEventPublisher)
		store.On("Get", mock.Anything, "arch-1").Return(existing(), nil)
		store.On("UpdateIfVersion", mock.Anything, "arch-1", 1, mock.Anything).Return(existing(), nil)
		model.On("Suggest", mock.Anything, mock.Anything, ports.StageCode).Return(&ports.Suggestion{Code: "x"}, nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
		o := NewAugmentationOrchestrator(store, model, publisher, mocks.NewPermissiveMetricsRecorder(), nopLogger{})

		updated, err := o.GenerateCode(ctx, commands.GenerateCodeCommand{ArchitectureID: "arch-1", ExpectedVersion: 1})

		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

// The following exercise the orchestrators against the real in-memory store.

type scriptedModel struct {
	codes []string
	calls int
}

func (m *scriptedModel) Suggest(ctx context.Context, prompt string, stage ports.Stage) (*ports.Suggestion, error) {
	if stage == ports.StageGraph {
		return webAPISuggestion(), nil
	}
	code := m.codes[m.calls%len(m.codes)]
	m.calls++
	return &ports.Suggestion{Code: code}, nil
}

func newPipeline(model ports.ModelClient) (*GenerationOrchestrator, *AugmentationOrchestrator, *memory.ArchitectureStore) {
	store := memory.NewArchitectureStore()
	publisher := new(mocks.MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	metrics := mocks.NewPermissiveMetricsRecorder()
	gen := NewGenerationOrchestrator(store, model, &sequenceIDs{}, publisher, metrics, nopLogger{})
	aug := NewAugmentationOrchestrator(store, model, publisher, metrics, nopLogger{})
	return gen, aug, store
}

func TestPipeline_GetAfterCreateMatches(t *testing.T) {
	ctx := context.Background()
	gen, _, store := newPipeline(&scriptedModel{codes: []string{"a"}})

	created, err := gen.CreateArchitecture(ctx, commands.NewCreateArchitectureCommand("A web API with a database"))
	require.NoError(t, err)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestPipeline_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	gen, _, store := newPipeline(&scriptedModel{codes: []string{"a"}})

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		r, err := gen.CreateArchitecture(ctx, commands.NewCreateArchitectureCommand("A web API"))
		require.NoError(t, err)
		assert.False(t, seen[r.ID])
		seen[r.ID] = true
	}
	assert.Equal(t, 5, store.Len())
}

func TestPipeline_GenerateCodeTwiceLastWriteWins(t *testing.T) {
	ctx := context.Background()
	gen, aug, store := newPipeline(&scriptedModel{codes: []string{"first", "second"}})

	created, err := gen.CreateArchitecture(ctx, commands.NewCreateArchitectureCommand("A web API with a database"))
	require.NoError(t, err)

	first, err := aug.GenerateCode(ctx, commands.GenerateCodeCommand{ArchitectureID: created.ID})
	require.NoError(t, err)
	second, err := aug.GenerateCode(ctx, commands.GenerateCodeCommand{ArchitectureID: created.ID})
	require.NoError(t, err)

	assert.Equal(t, "first", first.Metadata[architecture.MetaCDKCode])
	assert.Equal(t, "second", second.Metadata[architecture.MetaCDKCode])

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Metadata[architecture.MetaCDKCode])
	assert.NotEmpty(t, got.Metadata[architecture.MetaCDKGeneratedAt])
	assert.Equal(t, created.Nodes, got.Nodes)
	assert.Equal(t, created.Edges, got.Edges)
	assert.Equal(t, created.Metadata.Prompt(), got.Metadata.Prompt())
	assert.Equal(t, created.Metadata.Rationale(), got.Metadata.Rationale())
	assert.Equal(t, 3, got.Version)
}
