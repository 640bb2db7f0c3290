package commands

import (
	"context"
	"time"

	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/domain/services"
)

// BulkSortResult lists every selected parcel. Updated counts the ones that
// changed; parcels already sorted into the same bin and route are skipped.
type BulkSortResult struct {
	Updated int
	Parcels []parcel.Snapshot
}

// BulkSortCommandHandler sorts every selected parcel or none of them. Each
// changed parcel gets its own SORT event; all updates and events commit
// together.
type BulkSortCommandHandler struct {
	uowFactory ParcelUoWFactory
	planner    services.BatchPlanner
}

func NewBulkSortCommandHandler(uowFactory ParcelUoWFactory, now func() time.Time) BulkSortCommandHandler {
	return BulkSortCommandHandler{
		uowFactory: uowFactory,
		planner:    services.NewBatchPlanner(services.NewParcelOperator(now)),
	}
}

func (h BulkSortCommandHandler) Handle(ctx context.Context, command BulkSortCommand) (BulkSortResult, error) {
	if err := command.Validate(); err != nil {
		return BulkSortResult{}, err
	}
	if _, err := command.actor.RequireStation(); err != nil {
		return BulkSortResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return BulkSortResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ParcelRepository()

	parcels, err := repo.GetMany(ctx, command.parcelIDs)
	if err != nil {
		return BulkSortResult{}, err
	}

	input := parcel.Input{SortBin: command.sortBin, RouteCode: command.routeCode}
	outcomes, err := h.planner.Plan(parcels, parcel.Sort, input, command.actor)
	if err != nil {
		return BulkSortResult{}, err
	}

	result := BulkSortResult{Parcels: make([]parcel.Snapshot, 0, len(outcomes))}
	for _, o := range outcomes {
		result.Parcels = append(result.Parcels, o.Parcel.Snapshot())
		if !o.Changed() {
			continue
		}
		if err = repo.Update(ctx, o.Parcel, o.Event); err != nil {
			return BulkSortResult{}, err
		}
		result.Updated++
	}

	if err = uow.Commit(ctx); err != nil {
		return BulkSortResult{}, err
	}

	return result, nil
}
