// Package messaging composes event bus implementations.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"retro-backend/application/ports"
	"retro-backend/domain/events"
)

// CompositeBus fans each publish out to the in-process bus first, then to
// any secondary buses. Secondary failures are logged but never fail the
// command; the mutation is already committed and subscribers were served.
type CompositeBus struct {
	primary     ports.EventBus
	secondaries []ports.EventBus
	logger      *zap.Logger
}

// NewCompositeBus creates a composite bus. primary must not be nil.
func NewCompositeBus(logger *zap.Logger, primary ports.EventBus, secondaries ...ports.EventBus) *CompositeBus {
	return &CompositeBus{
		primary:     primary,
		secondaries: secondaries,
		logger:      logger,
	}
}

// Publish sends a single event
func (b *CompositeBus) Publish(ctx context.Context, event events.DomainEvent) error {
	err := b.primary.Publish(ctx, event)
	for _, secondary := range b.secondaries {
		if serr := secondary.Publish(ctx, event); serr != nil {
			b.logger.Warn("secondary event bus publish failed",
				zap.String("event_type", event.GetEventType()),
				zap.Error(serr))
		}
	}
	return err
}

// PublishBatch sends multiple events in order
func (b *CompositeBus) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	err := b.primary.PublishBatch(ctx, evts)
	for _, secondary := range b.secondaries {
		if serr := secondary.PublishBatch(ctx, evts); serr != nil {
			b.logger.Warn("secondary event bus publish failed",
				zap.Int("count", len(evts)),
				zap.Error(serr))
		}
	}
	return err
}
