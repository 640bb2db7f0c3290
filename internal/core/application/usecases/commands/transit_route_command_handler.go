package commands

import (
	"context"
	"time"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/transit"
)

var routeEventTypes = map[transit.Status]event.Type{
	transit.Dispatched: event.RouteDispatched,
	transit.Arrived:    event.RouteArrived,
	transit.Cancelled:  event.RouteCancelled,
}

// TransitRouteCommandHandler creates and advances vehicle trips. Routes are
// independent of parcels; dashboards correlate them with transfer manifests.
type TransitRouteCommandHandler struct {
	uowFactory TransitRouteUoWFactory
	now        func() time.Time
}

func NewTransitRouteCommandHandler(uowFactory TransitRouteUoWFactory, now func() time.Time) TransitRouteCommandHandler {
	if now == nil {
		now = time.Now
	}
	return TransitRouteCommandHandler{uowFactory: uowFactory, now: now}
}

func (h TransitRouteCommandHandler) Create(ctx context.Context, command CreateTransitRouteCommand) (transit.Snapshot, error) {
	if err := command.Validate(); err != nil {
		return transit.Snapshot{}, err
	}
	from, err := command.actor.RequireStation()
	if err != nil {
		return transit.Snapshot{}, err
	}

	at := h.now()
	route, err := transit.NewRoute(kernel.NewUUID(), from, command.to, command.vehicle, at)
	if err != nil {
		return transit.Snapshot{}, err
	}
	e, err := event.NewRouteEvent(event.RouteCreated, route.ID(), command.actor, at)
	if err != nil {
		return transit.Snapshot{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return transit.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.TransitRouteRepository().Add(ctx, route, e); err != nil {
		return transit.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return transit.Snapshot{}, err
	}

	return route.Snapshot(), nil
}

func (h TransitRouteCommandHandler) Advance(ctx context.Context, command AdvanceTransitRouteCommand) (transit.Snapshot, error) {
	if err := command.Validate(); err != nil {
		return transit.Snapshot{}, err
	}
	station, err := command.actor.RequireStation()
	if err != nil {
		return transit.Snapshot{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return transit.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.TransitRouteRepository()

	route, err := repo.Get(ctx, command.routeID)
	if err != nil {
		return transit.Snapshot{}, err
	}

	at := h.now()
	if err = route.Advance(command.target, station.ID(), at); err != nil {
		return transit.Snapshot{}, err
	}

	e, err := event.NewRouteEvent(routeEventTypes[command.target], route.ID(), command.actor, at)
	if err != nil {
		return transit.Snapshot{}, err
	}
	if err = repo.Update(ctx, route, e); err != nil {
		return transit.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return transit.Snapshot{}, err
	}

	return route.Snapshot(), nil
}
