package commands

import (
	"context"

	"parcelhub/internal/core/ports"
)

type RelayResult struct {
	Published int
	Cursor    int64
}

// RelayEventsCommandHandler pushes log entries past the relay cursor to the
// publisher and advances the cursor in the same unit of work. A failed
// publish leaves the cursor where it was, so delivery is at least once.
type RelayEventsCommandHandler struct {
	uowFactory RelayUoWFactory
	publisher  ports.EventPublisher
}

func NewRelayEventsCommandHandler(uowFactory RelayUoWFactory, publisher ports.EventPublisher) RelayEventsCommandHandler {
	return RelayEventsCommandHandler{uowFactory: uowFactory, publisher: publisher}
}

func (h RelayEventsCommandHandler) Handle(ctx context.Context, command RelayEventsCommand) (RelayResult, error) {
	if err := command.Validate(); err != nil {
		return RelayResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RelayResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	cursors := uow.RelayCursorRepository()

	cursor, err := cursors.Get(ctx, command.relay)
	if err != nil {
		return RelayResult{}, err
	}

	events, err := uow.EventRepository().ListAfter(ctx, cursor, command.batchSize)
	if err != nil {
		return RelayResult{}, err
	}
	if len(events) == 0 {
		return RelayResult{Cursor: cursor}, nil
	}

	if err = h.publisher.Publish(ctx, events); err != nil {
		return RelayResult{}, err
	}

	last := events[len(events)-1].Sequence()
	if err = cursors.Save(ctx, command.relay, last); err != nil {
		return RelayResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return RelayResult{}, err
	}

	return RelayResult{Published: len(events), Cursor: last}, nil
}
