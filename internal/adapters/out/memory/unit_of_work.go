package memory

import (
	"context"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/manifest"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/domain/model/transit"
	"parcelhub/internal/core/ports"
)

type UnitOfWorkFactory struct {
	store *Store
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

type stagedParcel struct {
	snapshot parcel.Snapshot
	isNew    bool
}

type stagedManifest struct {
	snapshot manifest.Snapshot
	isNew    bool
}

type stagedRoute struct {
	snapshot transit.Snapshot
	isNew    bool
}

// batch collects the writes of one unit of work until commit.
type batch struct {
	parcels     map[string]stagedParcel
	parcelOrder []string
	manifests   map[kernel.UUID]stagedManifest
	routes      map[kernel.UUID]stagedRoute
	events      []event.Snapshot
	cursors     map[string]int64
}

func newBatch() *batch {
	return &batch{
		parcels:   make(map[string]stagedParcel),
		manifests: make(map[kernel.UUID]stagedManifest),
		routes:    make(map[kernel.UUID]stagedRoute),
		cursors:   make(map[string]int64),
	}
}

func (b *batch) putParcel(s parcel.Snapshot, isNew bool) {
	if prev, ok := b.parcels[s.ID]; ok {
		isNew = isNew || prev.isNew
	} else {
		b.parcelOrder = append(b.parcelOrder, s.ID)
	}
	b.parcels[s.ID] = stagedParcel{snapshot: s, isNew: isNew}
}

// UnitOfWork stages writes in memory and applies them to the store on
// Commit. Writes issued without Begin commit immediately, one call at a time.
type UnitOfWork struct {
	store *Store
	tx    *batch
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func (uow *UnitOfWork) Begin(_ context.Context) error {
	if uow.tx != nil {
		return nil
	}
	uow.tx = newBatch()
	return nil
}

func (uow *UnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return ErrNoTransaction
	}
	if err := ctx.Err(); err != nil {
		uow.tx = nil
		return err
	}
	b := uow.tx
	uow.tx = nil
	return uow.store.commit(b)
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return ErrNoTransaction
	}
	uow.tx = nil
	return nil
}

// write runs fn against the active batch, or against a one-off batch that
// is committed straight away.
func (uow *UnitOfWork) write(fn func(b *batch) error) error {
	if uow.tx != nil {
		return fn(uow.tx)
	}
	b := newBatch()
	if err := fn(b); err != nil {
		return err
	}
	return uow.store.commit(b)
}

func (uow *UnitOfWork) ParcelRepository() ports.ParcelRepository {
	return &parcelRepository{uow: uow}
}

func (uow *UnitOfWork) ManifestRepository() ports.ManifestRepository {
	return &manifestRepository{uow: uow}
}

func (uow *UnitOfWork) TransitRouteRepository() ports.TransitRouteRepository {
	return &routeRepository{uow: uow}
}

func (uow *UnitOfWork) EventRepository() ports.EventRepository {
	return &eventRepository{uow: uow}
}

func (uow *UnitOfWork) RelayCursorRepository() ports.RelayCursorRepository {
	return &cursorRepository{uow: uow}
}
