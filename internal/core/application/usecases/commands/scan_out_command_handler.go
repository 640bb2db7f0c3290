package commands

import (
	"context"
	"time"

	"parcelhub/internal/core/application/lookup"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/domain/services"
	"parcelhub/internal/pkg/errs"
)

// ScanOutCommandHandler dispatches a manifested parcel on its delivery route
// or transfer vehicle. The mode must match the type of the manifest the
// parcel belongs to, also when a repeated scan writes nothing.
type ScanOutCommandHandler struct {
	uowFactory ManifestUoWFactory
	operator   services.ParcelOperator
}

func NewScanOutCommandHandler(uowFactory ManifestUoWFactory, now func() time.Time) ScanOutCommandHandler {
	return ScanOutCommandHandler{
		uowFactory: uowFactory,
		operator:   services.NewParcelOperator(now),
	}
}

func (h ScanOutCommandHandler) Handle(ctx context.Context, command ScanOutCommand) (ParcelResult, error) {
	if err := command.Validate(); err != nil {
		return ParcelResult{}, err
	}
	if _, err := command.actor.RequireStation(); err != nil {
		return ParcelResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ParcelResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	parcels := uow.ParcelRepository()

	found, err := lookup.NewResolver(parcels).Find(ctx, command.code)
	if err != nil {
		return ParcelResult{}, err
	}
	p := found.Parcel
	manifestID := p.ManifestID()

	// The state machine settles custody and status before the manifest is
	// consulted, so a foreign or unmanifested parcel reports that first.
	outcome, err := h.operator.Apply(p, command.mode.event(), parcel.Input{}, command.actor)
	if err != nil {
		return ParcelResult{}, err
	}

	if manifestID == nil {
		return ParcelResult{}, errs.NewInvalidTransitionError(p.ID(), "manifested without manifest", string(command.mode.event()))
	}
	m, err := uow.ManifestRepository().Get(ctx, *manifestID)
	if err != nil {
		return ParcelResult{}, err
	}
	if m.Type() != command.mode.manifestType() {
		return ParcelResult{}, errs.NewInvalidTransitionError(
			p.ID(), "a "+string(m.Type())+" manifest", "scan out for "+string(command.mode))
	}

	result := ParcelResult{Parcel: p.Snapshot(), Path: found.Path, Changed: outcome.Changed()}
	if !outcome.Changed() {
		return result, nil
	}

	if err = parcels.Update(ctx, outcome.Parcel, outcome.Event); err != nil {
		return ParcelResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ParcelResult{}, err
	}

	return result, nil
}
