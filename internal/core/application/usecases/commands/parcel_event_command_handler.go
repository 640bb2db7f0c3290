package commands

import (
	"context"
	"time"

	"parcelhub/internal/core/application/lookup"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/domain/services"
)

// ParcelResult is what a single-parcel command reports back to the scanner.
type ParcelResult struct {
	Parcel parcel.Snapshot
	Path   lookup.Path
	// Changed is false for repeated requests, which write nothing.
	Changed bool
}

// ParcelEventCommandHandler resolves the scanned code, runs the state
// machine and stores the parcel with its event in one unit of work.
type ParcelEventCommandHandler struct {
	uowFactory ParcelUoWFactory
	operator   services.ParcelOperator
}

func NewParcelEventCommandHandler(uowFactory ParcelUoWFactory, now func() time.Time) ParcelEventCommandHandler {
	return ParcelEventCommandHandler{
		uowFactory: uowFactory,
		operator:   services.NewParcelOperator(now),
	}
}

func (h ParcelEventCommandHandler) Handle(ctx context.Context, command ParcelEventCommand) (ParcelResult, error) {
	if err := command.Validate(); err != nil {
		return ParcelResult{}, err
	}
	if _, err := command.Actor().RequireStation(); err != nil {
		return ParcelResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ParcelResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ParcelRepository()

	found, err := lookup.NewResolver(repo).Find(ctx, command.Code())
	if err != nil {
		return ParcelResult{}, err
	}

	outcome, err := h.operator.Apply(found.Parcel, command.Event(), command.Input(), command.Actor())
	if err != nil {
		return ParcelResult{}, err
	}

	result := ParcelResult{Parcel: found.Parcel.Snapshot(), Path: found.Path, Changed: outcome.Changed()}
	if !outcome.Changed() {
		return result, nil
	}

	if err = repo.Update(ctx, outcome.Parcel, outcome.Event); err != nil {
		return ParcelResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ParcelResult{}, err
	}

	return result, nil
}
