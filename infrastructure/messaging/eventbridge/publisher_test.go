package eventbridge

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cloudmap-backend/domain/events"
)

type mockEventBridge struct {
	mock.Mock
}

func (m *mockEventBridge) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventbridge.PutEventsOutput), args.Error(1)
}

func createdEvents(n int) []events.DomainEvent {
	out := make([]events.DomainEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, events.NewArchitectureCreated(fmt.Sprintf("arch-%d", i), 2, 1, "prompt", time.Now()))
	}
	return out
}

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("Should batch entries by ten", func(t *testing.T) {
		client := new(mockEventBridge)
		client.On("PutEvents", ctx, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
			return len(in.Entries) == 10
		})).Return(&eventbridge.PutEventsOutput{}, nil).Once()
		client.On("PutEvents", ctx, mock.MatchedBy(func(in *eventbridge.PutEventsInput) bool {
			return len(in.Entries) == 2 &&
				aws.ToString(in.Entries[0].Source) == Source &&
				aws.ToString(in.Entries[0].DetailType) == events.TypeArchitectureCreated &&
				aws.ToString(in.Entries[0].EventBusName) == "bus"
		})).Return(&eventbridge.PutEventsOutput{}, nil).Once()
		publisher := NewPublisher(client, "bus", zap.NewNop())

		require.NoError(t, publisher.Publish(ctx, createdEvents(12)))
		client.AssertExpectations(t)
	})

	t.Run("Should report failed entries", func(t *testing.T) {
		client := new(mockEventBridge)
		client.On("PutEvents", ctx, mock.Anything).Return(&eventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries:          []types.PutEventsResultEntry{{ErrorCode: aws.String("InternalFailure")}},
		}, nil)
		publisher := NewPublisher(client, "bus", zap.NewNop())

		err := publisher.Publish(ctx, createdEvents(1))

		assert.EqualError(t, err, "1 events failed to publish")
	})

	t.Run("Should wrap client errors", func(t *testing.T) {
		client := new(mockEventBridge)
		client.On("PutEvents", ctx, mock.Anything).Return(nil, errors.New("denied"))
		publisher := NewPublisher(client, "bus", zap.NewNop())

		err := publisher.Publish(ctx, createdEvents(1))

		assert.ErrorContains(t, err, "denied")
	})

	t.Run("Should do nothing without events", func(t *testing.T) {
		client := new(mockEventBridge)
		publisher := NewPublisher(client, "bus", zap.NewNop())

		require.NoError(t, publisher.Publish(ctx, nil))
		client.AssertNotCalled(t, "PutEvents", mock.Anything, mock.Anything)
	})
}
