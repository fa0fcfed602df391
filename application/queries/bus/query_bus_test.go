package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupQuery struct {
	ID string
}

func (q lookupQuery) Validate() error {
	if q.ID == "" {
		return errors.New("id is required")
	}
	return nil
}

type recordingLogger struct {
	debugs []string
	warns  []string
}

func (l *recordingLogger) Debug(msg string, _ ...interface{}) { l.debugs = append(l.debugs, msg) }
func (l *recordingLogger) Warn(msg string, _ ...interface{})  { l.warns = append(l.warns, msg) }

func echo(ctx context.Context, q Query) (interface{}, error) {
	return "found " + q.(lookupQuery).ID, nil
}

func TestQueryBus(t *testing.T) {
	t.Run("Should route by query type", func(t *testing.T) {
		b := NewQueryBus()
		require.NoError(t, b.Register(lookupQuery{}, QueryHandlerFunc(echo)))

		result, err := b.Ask(context.Background(), lookupQuery{ID: "a"})

		require.NoError(t, err)
		assert.Equal(t, "found a", result)
	})

	t.Run("Should validate before dispatch", func(t *testing.T) {
		b := NewQueryBus()
		require.NoError(t, b.Register(lookupQuery{}, QueryHandlerFunc(echo)))

		_, err := b.Ask(context.Background(), lookupQuery{})

		assert.EqualError(t, err, "id is required")
	})

	t.Run("Should reject duplicate registration", func(t *testing.T) {
		b := NewQueryBus()
		require.NoError(t, b.Register(lookupQuery{}, QueryHandlerFunc(echo)))

		assert.Error(t, b.Register(lookupQuery{}, QueryHandlerFunc(echo)))
	})

	t.Run("Should fail for unknown queries", func(t *testing.T) {
		_, err := NewQueryBus().Ask(context.Background(), lookupQuery{ID: "a"})

		assert.ErrorIs(t, err, ErrHandlerNotFound)
	})
}

func TestSlowQueryMiddleware(t *testing.T) {
	t.Run("Should log fast queries at debug", func(t *testing.T) {
		logger := &recordingLogger{}
		b := NewQueryBus(SlowQueryMiddleware(logger, time.Minute))
		require.NoError(t, b.Register(lookupQuery{}, QueryHandlerFunc(echo)))

		_, err := b.Ask(context.Background(), lookupQuery{ID: "a"})

		require.NoError(t, err)
		assert.Equal(t, []string{"Query handled"}, logger.debugs)
		assert.Empty(t, logger.warns)
	})

	t.Run("Should warn about slow queries", func(t *testing.T) {
		logger := &recordingLogger{}
		b := NewQueryBus(SlowQueryMiddleware(logger, time.Millisecond))
		require.NoError(t, b.Register(lookupQuery{}, QueryHandlerFunc(func(ctx context.Context, q Query) (interface{}, error) {
			time.Sleep(5 * time.Millisecond)
			return nil, nil
		})))

		_, err := b.Ask(context.Background(), lookupQuery{ID: "a"})

		require.NoError(t, err)
		assert.Equal(t, []string{"Slow query"}, logger.warns)
	})
}
