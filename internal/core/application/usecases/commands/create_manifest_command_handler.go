package commands

import (
	"context"
	"time"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/manifest"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/domain/services"
)

// CreateManifestCommandHandler opens a manifest and moves every member parcel
// to manifested in the same batch. Members must all be sorted and held by the
// actor's station; one failing parcel rejects the manifest.
type CreateManifestCommandHandler struct {
	uowFactory ManifestUoWFactory
	planner    services.BatchPlanner
	now        func() time.Time
}

func NewCreateManifestCommandHandler(uowFactory ManifestUoWFactory, now func() time.Time) CreateManifestCommandHandler {
	if now == nil {
		now = time.Now
	}
	return CreateManifestCommandHandler{
		uowFactory: uowFactory,
		planner:    services.NewBatchPlanner(services.NewParcelOperator(now)),
		now:        now,
	}
}

func (h CreateManifestCommandHandler) Handle(ctx context.Context, command CreateManifestCommand) (manifest.Snapshot, error) {
	if err := command.Validate(); err != nil {
		return manifest.Snapshot{}, err
	}
	station, err := command.actor.RequireStation()
	if err != nil {
		return manifest.Snapshot{}, err
	}

	at := h.now()
	m, err := manifest.NewManifest(kernel.NewUUID(), command.typ, station, command.parcelIDs, command.route, at)
	if err != nil {
		return manifest.Snapshot{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return manifest.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	parcelRepo := uow.ParcelRepository()

	parcels, err := parcelRepo.GetMany(ctx, m.ParcelIDs())
	if err != nil {
		return manifest.Snapshot{}, err
	}

	outcomes, err := h.planner.Plan(parcels, parcel.AddToManifest, parcel.Input{ManifestID: m.ID()}, command.actor)
	if err != nil {
		return manifest.Snapshot{}, err
	}

	created, err := event.NewManifestEvent(event.ManifestCreated, m.ID(), command.actor, at)
	if err != nil {
		return manifest.Snapshot{}, err
	}
	if err = uow.ManifestRepository().Add(ctx, m, created); err != nil {
		return manifest.Snapshot{}, err
	}

	for _, o := range outcomes {
		if !o.Changed() {
			continue
		}
		if err = parcelRepo.Update(ctx, o.Parcel, o.Event); err != nil {
			return manifest.Snapshot{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return manifest.Snapshot{}, err
	}

	return m.Snapshot(), nil
}
