package queries

import (
	"context"
	"errors"
	"strings"
	"time"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/transit"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"

	"github.com/jinzhu/now"
)

var (
	ErrListTransitRoutesQueryIsNotConstructed = errors.New(
		"ListTransitRoutesQuery must be created via NewListTransitRoutesQuery constructor",
	)
	ErrGetTransitRouteQueryIsNotConstructed = errors.New(
		"GetTransitRouteQuery must be created via NewGetTransitRouteQuery constructor",
	)
)

// RouteCriteria narrows a route listing. Dashboards pair a transfer
// manifest with its trip by station pair and day.
type RouteCriteria struct {
	FromStationID string
	ToStationID   string
	// StationID matches either end of the trip.
	StationID string
	Status    string
	// Day selects routes created on that UTC calendar day. Zero means any day.
	Day   time.Time
	Limit int
}

type ListTransitRoutesQuery struct {
	filter ports.RouteFilter
	guard  guard.ConstructorGuard
}

func NewListTransitRoutesQuery(c RouteCriteria) (ListTransitRoutesQuery, error) {
	if c.Limit < 0 || c.Limit > ports.MaxListLimit {
		return ListTransitRoutesQuery{}, errs.NewValueIsOutOfRangeError("limit", c.Limit, 0, ports.MaxListLimit)
	}

	filter := ports.RouteFilter{
		FromStationID: strings.TrimSpace(c.FromStationID),
		ToStationID:   strings.TrimSpace(c.ToStationID),
		StationID:     strings.TrimSpace(c.StationID),
		Limit:         c.Limit,
	}
	if c.Status != "" {
		st, err := transit.ParseStatus(c.Status)
		if err != nil {
			return ListTransitRoutesQuery{}, err
		}
		filter.Status = st
	}
	if !c.Day.IsZero() {
		filter.CreatedFrom, filter.CreatedTo = dayWindow(c.Day)
	}

	return ListTransitRoutesQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

// dayWindow returns [start of day, start of next day) in UTC.
func dayWindow(day time.Time) (time.Time, time.Time) {
	start := now.With(day.UTC()).BeginningOfDay()
	return start, start.AddDate(0, 0, 1)
}

func (q ListTransitRoutesQuery) Validate() error {
	return q.guard.Validate(ErrListTransitRoutesQueryIsNotConstructed)
}

type GetTransitRouteQuery struct {
	id    kernel.UUID
	guard guard.ConstructorGuard
}

func NewGetTransitRouteQuery(id string) (GetTransitRouteQuery, error) {
	parsed, err := kernel.ParseUUID(id)
	if err != nil {
		return GetTransitRouteQuery{}, err
	}
	return GetTransitRouteQuery{id: parsed, guard: guard.NewConstructorGuard()}, nil
}

func (q GetTransitRouteQuery) Validate() error {
	return q.guard.Validate(ErrGetTransitRouteQueryIsNotConstructed)
}

type TransitRouteQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewTransitRouteQueryHandler(uowFactory ports.UnitOfWorkFactory) TransitRouteQueryHandler {
	return TransitRouteQueryHandler{uowFactory: uowFactory}
}

func (h TransitRouteQueryHandler) List(ctx context.Context, query ListTransitRoutesQuery) ([]transit.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	routes, err := h.uowFactory.Create().TransitRouteRepository().List(ctx, query.filter)
	if err != nil {
		return nil, err
	}

	out := make([]transit.Snapshot, 0, len(routes))
	for _, r := range routes {
		out = append(out, r.Snapshot())
	}
	return out, nil
}

func (h TransitRouteQueryHandler) Get(ctx context.Context, query GetTransitRouteQuery) (transit.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return transit.Snapshot{}, err
	}

	r, err := h.uowFactory.Create().TransitRouteRepository().Get(ctx, query.id)
	if err != nil {
		return transit.Snapshot{}, err
	}
	return r.Snapshot(), nil
}
