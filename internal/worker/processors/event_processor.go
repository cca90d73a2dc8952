package processors

import (
	"context"

	"feedgen/internal/events"
	"feedgen/internal/logger"
	"feedgen/internal/worker/processors/validation"
)

// EventProcessor validates catalog events and dispatches them on the bus.
type EventProcessor struct {
	bus       *events.Bus
	logger    *logger.Logger
	validator *validation.Validator
}

func NewEventProcessor(bus *events.Bus, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		bus:       bus,
		logger:    logger,
		validator: validation.New(logger),
	}
}

func (ep *EventProcessor) Process(ctx context.Context, event events.Message) error {
	if err := ep.validator.ValidateEvent(event); err != nil {
		return err
	}

	ep.logger.Debug("Processing event: %+v", event)
	if err := event.Publish(ctx, ep.bus); err != nil {
		return err
	}

	ep.logger.Info("Event %s processed successfully", event.Type)
	return nil
}
