package ports

import (
	"context"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
)

// EventRepository is the append-only warehouse log. There is no
// update or delete.
type EventRepository interface {
	// Append stores e and returns its id. The store assigns the sequence.
	Append(ctx context.Context, e *event.WarehouseEvent) (kernel.UUID, error)

	// ListByParcel returns a parcel's events oldest first.
	ListByParcel(ctx context.Context, parcelID string) ([]*event.WarehouseEvent, error)

	// ListByReference returns the events of a manifest or route oldest first.
	ListByReference(ctx context.Context, referenceID kernel.UUID) ([]*event.WarehouseEvent, error)

	// ListAfter pages through the whole log by sequence.
	ListAfter(ctx context.Context, sequence int64, limit int) ([]*event.WarehouseEvent, error)
}

// RelayCursorRepository remembers how far each relay has published the log.
type RelayCursorRepository interface {
	Get(ctx context.Context, relay string) (int64, error)
	Save(ctx context.Context, relay string, sequence int64) error
}

// EventPublisher delivers events to consumers outside the store.
type EventPublisher interface {
	Publish(ctx context.Context, events []*event.WarehouseEvent) error
}
