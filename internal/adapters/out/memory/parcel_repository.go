package memory

import (
	"context"
	"sort"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"
)

type parcelRepository struct {
	uow *UnitOfWork
}

func (r *parcelRepository) Add(ctx context.Context, p *parcel.Parcel, e *event.WarehouseEvent) error {
	return r.save(ctx, p, e, true)
}

func (r *parcelRepository) Update(ctx context.Context, p *parcel.Parcel, e *event.WarehouseEvent) error {
	return r.save(ctx, p, e, false)
}

func (r *parcelRepository) save(ctx context.Context, p *parcel.Parcel, e *event.WarehouseEvent, isNew bool) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if !isNew {
		if _, ok := r.uow.lookupParcel(p.ID()); !ok {
			return errs.NewObjectNotFoundError("parcel", p.ID())
		}
	}

	return r.uow.write(func(b *batch) error {
		b.putParcel(p.Snapshot(), isNew)
		b.events = append(b.events, e.Snapshot())
		return nil
	})
}

func (r *parcelRepository) Get(ctx context.Context, id string) (*parcel.Parcel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := r.uow.lookupParcel(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("parcel", id)
	}
	return parcel.RestoreParcel(s)
}

func (r *parcelRepository) FindByTrackingID(ctx context.Context, trackingID string) (*parcel.Parcel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []parcel.Snapshot
	r.uow.eachParcel(func(s parcel.Snapshot) {
		if s.TrackingID == trackingID {
			candidates = append(candidates, s)
		}
	})
	if len(candidates) == 0 {
		return nil, errs.NewObjectNotFoundError("parcel", trackingID)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return parcel.RestoreParcel(candidates[0])
}

func (r *parcelRepository) GetMany(ctx context.Context, ids []string) ([]*parcel.Parcel, error) {
	out := make([]*parcel.Parcel, 0, len(ids))
	for _, id := range ids {
		p, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *parcelRepository) List(ctx context.Context, filter ports.ParcelFilter) ([]*parcel.Parcel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var staged map[string]stagedParcel
	if r.uow.tx != nil {
		staged = r.uow.tx.parcels
	}

	r.uow.store.mu.RLock()
	snapshots := r.uow.store.listParcels(filter, staged)
	r.uow.store.mu.RUnlock()

	out := make([]*parcel.Parcel, 0, len(snapshots))
	for _, s := range snapshots {
		p, err := parcel.RestoreParcel(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// lookupParcel reads the unit of work's own writes first.
func (uow *UnitOfWork) lookupParcel(id string) (parcel.Snapshot, bool) {
	if uow.tx != nil {
		if staged, ok := uow.tx.parcels[id]; ok {
			return staged.snapshot, true
		}
	}
	uow.store.mu.RLock()
	defer uow.store.mu.RUnlock()
	s, ok := uow.store.parcels[id]
	return s, ok
}

func (uow *UnitOfWork) eachParcel(fn func(parcel.Snapshot)) {
	uow.store.mu.RLock()
	defer uow.store.mu.RUnlock()
	for id, s := range uow.store.parcels {
		if uow.tx != nil {
			if staged, ok := uow.tx.parcels[id]; ok {
				s = staged.snapshot
			}
		}
		fn(s)
	}
	if uow.tx == nil {
		return
	}
	for id, staged := range uow.tx.parcels {
		if _, committed := uow.store.parcels[id]; !committed {
			fn(staged.snapshot)
		}
	}
}
