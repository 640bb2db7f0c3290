package memory

import (
	"context"
	"sort"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/transit"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"
)

type routeRepository struct {
	uow *UnitOfWork
}

func (r *routeRepository) Add(ctx context.Context, route *transit.Route, e *event.WarehouseEvent) error {
	return r.save(ctx, route, e, true)
}

func (r *routeRepository) Update(ctx context.Context, route *transit.Route, e *event.WarehouseEvent) error {
	return r.save(ctx, route, e, false)
}

func (r *routeRepository) save(ctx context.Context, route *transit.Route, e *event.WarehouseEvent, isNew bool) error {
	if err := route.Validate(); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !isNew {
		if _, ok := r.lookup(route.ID()); !ok {
			return errs.NewObjectNotFoundError("route", route.ID().String())
		}
	}

	return r.uow.write(func(b *batch) error {
		if prev, ok := b.routes[route.ID()]; ok {
			isNew = isNew || prev.isNew
		}
		b.routes[route.ID()] = stagedRoute{snapshot: route.Snapshot(), isNew: isNew}
		b.events = append(b.events, e.Snapshot())
		return nil
	})
}

func (r *routeRepository) lookup(id kernel.UUID) (transit.Snapshot, bool) {
	if r.uow.tx != nil {
		if staged, ok := r.uow.tx.routes[id]; ok {
			return staged.snapshot, true
		}
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	s, ok := r.uow.store.routes[id]
	return s, ok
}

func (r *routeRepository) Get(ctx context.Context, id kernel.UUID) (*transit.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := r.lookup(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("route", id.String())
	}
	return transit.RestoreRoute(s)
}

func (r *routeRepository) List(ctx context.Context, filter ports.RouteFilter) ([]*transit.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.uow.store.mu.RLock()
	matched := make([]transit.Snapshot, 0)
	for _, s := range r.uow.store.routes {
		if filter.Matches(s) {
			matched = append(matched, s)
		}
	}
	r.uow.store.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if limit := ports.EffectiveLimit(filter.Limit); len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*transit.Route, 0, len(matched))
	for _, s := range matched {
		route, err := transit.RestoreRoute(s)
		if err != nil {
			return nil, err
		}
		out = append(out, route)
	}
	return out, nil
}
