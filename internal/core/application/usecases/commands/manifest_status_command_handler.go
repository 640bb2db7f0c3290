package commands

import (
	"context"
	"time"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/manifest"
)

// ManifestStatusCommandHandler moves a manifest along OPEN -> FINALIZED ->
// DISPATCHED. Neither step touches member parcels.
type ManifestStatusCommandHandler struct {
	uowFactory ManifestUoWFactory
	now        func() time.Time
}

func NewManifestStatusCommandHandler(uowFactory ManifestUoWFactory, now func() time.Time) ManifestStatusCommandHandler {
	if now == nil {
		now = time.Now
	}
	return ManifestStatusCommandHandler{uowFactory: uowFactory, now: now}
}

func (h ManifestStatusCommandHandler) Finalize(ctx context.Context, command FinalizeManifestCommand) (manifest.Snapshot, error) {
	if err := command.Validate(); err != nil {
		return manifest.Snapshot{}, err
	}
	return h.change(ctx, command.manifestRef, event.ManifestFinalized, (*manifest.Manifest).Finalize)
}

func (h ManifestStatusCommandHandler) Dispatch(ctx context.Context, command DispatchManifestCommand) (manifest.Snapshot, error) {
	if err := command.Validate(); err != nil {
		return manifest.Snapshot{}, err
	}
	return h.change(ctx, command.manifestRef, event.ManifestDispatched, (*manifest.Manifest).Dispatch)
}

func (h ManifestStatusCommandHandler) change(
	ctx context.Context,
	ref manifestRef,
	typ event.Type,
	step func(m *manifest.Manifest, actorStationID string, at time.Time) error,
) (manifest.Snapshot, error) {
	station, err := ref.actor.RequireStation()
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

	repo := uow.ManifestRepository()

	m, err := repo.Get(ctx, ref.manifestID)
	if err != nil {
		return manifest.Snapshot{}, err
	}

	at := h.now()
	if err = step(m, station.ID(), at); err != nil {
		return manifest.Snapshot{}, err
	}

	e, err := event.NewManifestEvent(typ, m.ID(), ref.actor, at)
	if err != nil {
		return manifest.Snapshot{}, err
	}
	if err = repo.Update(ctx, m, e); err != nil {
		return manifest.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return manifest.Snapshot{}, err
	}

	return m.Snapshot(), nil
}
