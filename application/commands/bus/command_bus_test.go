package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingCommand struct {
	Name string
}

func (c pingCommand) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(msg string, _ ...interface{})  { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.errors = append(l.errors, msg) }

func TestCommandBus(t *testing.T) {
	t.Run("Should dispatch to the registered handler", func(t *testing.T) {
		logger := &recordingLogger{}
		b := NewCommandBus(ValidationMiddleware(), LoggingMiddleware(logger))
		require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			return "pong " + cmd.(pingCommand).Name, nil
		})))

		result, err := b.Send(context.Background(), pingCommand{Name: "a"})

		require.NoError(t, err)
		assert.Equal(t, "pong a", result)
		assert.Equal(t, []string{"Executing command", "Command succeeded"}, logger.infos)
	})

	t.Run("Should reject invalid commands before the handler runs", func(t *testing.T) {
		called := false
		b := NewCommandBus(ValidationMiddleware())
		require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
			called = true
			return nil, nil
		})))

		_, err := b.Send(context.Background(), pingCommand{})

		assert.EqualError(t, err, "name is required")
		assert.False(t, called)
	})

	t.Run("Should fail for unknown commands", func(t *testing.T) {
		b := NewCommandBus()

		_, err := b.Send(context.Background(), pingCommand{Name: "a"})

		assert.ErrorIs(t, err, ErrHandlerNotFound)
	})

	t.Run("Should refuse duplicate registration", func(t *testing.T) {
		b := NewCommandBus()
		h := CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) { return nil, nil })

		require.NoError(t, b.Register(pingCommand{}, h))
		assert.Error(t, b.Register(pingCommand{}, h))
	})
}
