package handlers

import (
	"context"

	"go.uber.org/zap"

	"retro-backend/application/ports"
	"retro-backend/domain/core/valueobjects"
	"retro-backend/domain/events"
)

// CreateSessionResult is returned by CreateSessionHandler
type CreateSessionResult struct {
	SessionID   valueobjects.SessionID
	JoinCode    valueobjects.JoinCode
	ModeratorID valueobjects.ParticipantID
}

// JoinSessionResult is returned by JoinSessionHandler
type JoinSessionResult struct {
	SessionID     valueobjects.SessionID
	ParticipantID valueobjects.ParticipantID
	Phase         valueobjects.Phase
}

// AdvancePhaseResult is returned by AdvancePhaseHandler
type AdvancePhaseResult struct {
	Phase valueobjects.Phase
}

// publishEvents pushes committed domain events to the event bus in order.
// The mutation is already durable at this point; a publish failure evicts
// slow subscribers rather than failing the command, so errors are logged
// and swallowed.
func publishEvents(ctx context.Context, bus ports.EventBus, logger *zap.Logger, evts []events.DomainEvent) {
	if len(evts) == 0 {
		return
	}
	if err := bus.PublishBatch(ctx, evts); err != nil {
		logger.Error("failed to publish domain events",
			zap.Int("count", len(evts)),
			zap.Error(err),
		)
	}
}
