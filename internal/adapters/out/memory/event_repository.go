package memory

import (
	"context"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/ports"
)

type eventRepository struct {
	uow *UnitOfWork
}

var _ ports.EventRepository = (*eventRepository)(nil)

func (r *eventRepository) Append(ctx context.Context, e *event.WarehouseEvent) (kernel.UUID, error) {
	if err := e.Validate(); err != nil {
		return kernel.UUID{}, err
	}
	if err := ctx.Err(); err != nil {
		return kernel.UUID{}, err
	}
	err := r.uow.write(func(b *batch) error {
		b.events = append(b.events, e.Snapshot())
		return nil
	})
	if err != nil {
		return kernel.UUID{}, err
	}
	return e.ID(), nil
}

func (r *eventRepository) ListByParcel(ctx context.Context, parcelID string) ([]*event.WarehouseEvent, error) {
	return r.list(ctx, func(s event.Snapshot) bool { return s.ParcelID == parcelID })
}

func (r *eventRepository) ListByReference(ctx context.Context, referenceID kernel.UUID) ([]*event.WarehouseEvent, error) {
	return r.list(ctx, func(s event.Snapshot) bool {
		return s.ReferenceID != nil && s.ReferenceID.IsEqual(referenceID)
	})
}

// ListAfter only sees committed events; staged ones have no sequence yet.
func (r *eventRepository) ListAfter(ctx context.Context, sequence int64, limit int) ([]*event.WarehouseEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = ports.EffectiveLimit(limit)

	r.uow.store.mu.RLock()
	snapshots := make([]event.Snapshot, 0, limit)
	for _, s := range r.uow.store.events {
		if s.Sequence <= sequence {
			continue
		}
		snapshots = append(snapshots, s)
		if len(snapshots) == limit {
			break
		}
	}
	r.uow.store.mu.RUnlock()

	return restoreEvents(snapshots)
}

func (r *eventRepository) list(ctx context.Context, match func(event.Snapshot) bool) ([]*event.WarehouseEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.uow.store.mu.RLock()
	snapshots := make([]event.Snapshot, 0)
	for _, s := range r.uow.store.events {
		if match(s) {
			snapshots = append(snapshots, s)
		}
	}
	r.uow.store.mu.RUnlock()

	if r.uow.tx != nil {
		for _, s := range r.uow.tx.events {
			if match(s) {
				snapshots = append(snapshots, s)
			}
		}
	}

	return restoreEvents(snapshots)
}

func restoreEvents(snapshots []event.Snapshot) ([]*event.WarehouseEvent, error) {
	out := make([]*event.WarehouseEvent, 0, len(snapshots))
	for _, s := range snapshots {
		e, err := event.Restore(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

type cursorRepository struct {
	uow *UnitOfWork
}

func (r *cursorRepository) Get(ctx context.Context, relay string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if r.uow.tx != nil {
		if seq, ok := r.uow.tx.cursors[relay]; ok {
			return seq, nil
		}
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	return r.uow.store.cursors[relay], nil
}

func (r *cursorRepository) Save(ctx context.Context, relay string, sequence int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.uow.write(func(b *batch) error {
		b.cursors[relay] = sequence
		return nil
	})
}
