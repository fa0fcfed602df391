// Package noop provides an event publisher that only logs.
package noop

import (
	"context"

	"go.uber.org/zap"

	"cloudmap-backend/domain/events"
)

// Publisher drops events after logging them at debug level
type Publisher struct {
	logger *zap.Logger
}

// NewPublisher creates a new no-op publisher
func NewPublisher(logger *zap.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Publish implements ports.EventPublisher
func (p *Publisher) Publish(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, e := range domainEvents {
		p.logger.Debug("Event dropped, publishing disabled",
			zap.String("eventType", e.GetEventType()),
			zap.String("architectureID", e.GetAggregateID()),
		)
	}
	return nil
}
