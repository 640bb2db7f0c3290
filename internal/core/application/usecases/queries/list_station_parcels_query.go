package queries

import (
	"context"
	"errors"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"
)

var ErrListStationParcelsQueryIsNotConstructed = errors.New(
	"ListStationParcelsQuery must be created via NewListStationParcelsQuery constructor",
)

// ListStationParcelsQuery backs the station dashboard: the parcels held by
// the actor's station, optionally narrowed to some statuses.
type ListStationParcelsQuery struct {
	filter ports.ParcelFilter
	guard  guard.ConstructorGuard
}

func NewListStationParcelsQuery(act actor.Context, statuses []string, limit int) (ListStationParcelsQuery, error) {
	station, err := act.RequireStation()
	if err != nil {
		return ListStationParcelsQuery{}, err
	}
	if limit < 0 || limit > ports.MaxListLimit {
		return ListStationParcelsQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, ports.MaxListLimit)
	}

	filter := ports.ParcelFilter{StationID: station.ID(), Limit: limit}
	for _, s := range statuses {
		st, err := parcel.ParseStatus(s)
		if err != nil {
			return ListStationParcelsQuery{}, err
		}
		filter.Statuses = append(filter.Statuses, st)
	}

	return ListStationParcelsQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

func (q ListStationParcelsQuery) Validate() error {
	return q.guard.Validate(ErrListStationParcelsQueryIsNotConstructed)
}

// Filter is what the change feed subscribes with for the same dashboard.
func (q ListStationParcelsQuery) Filter() ports.ParcelFilter {
	return q.filter
}

type ListStationParcelsQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewListStationParcelsQueryHandler(uowFactory ports.UnitOfWorkFactory) ListStationParcelsQueryHandler {
	return ListStationParcelsQueryHandler{uowFactory: uowFactory}
}

func (h ListStationParcelsQueryHandler) Handle(ctx context.Context, query ListStationParcelsQuery) ([]parcel.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	parcels, err := h.uowFactory.Create().ParcelRepository().List(ctx, query.filter)
	if err != nil {
		return nil, err
	}

	out := make([]parcel.Snapshot, 0, len(parcels))
	for _, p := range parcels {
		out = append(out, p.Snapshot())
	}
	return out, nil
}
