package ports

import (
	"context"
	"time"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/transit"
)

// RouteFilter correlates trips with transfer manifests by station pair and
// time window. StationID matches either end of the trip.
type RouteFilter struct {
	FromStationID string
	ToStationID   string
	StationID     string
	Status        transit.Status
	// CreatedFrom is inclusive, CreatedTo exclusive.
	CreatedFrom time.Time
	CreatedTo   time.Time
	Limit       int
}

func (f RouteFilter) Matches(s transit.Snapshot) bool {
	switch {
	case f.FromStationID != "" && s.FromStationID != f.FromStationID:
		return false
	case f.ToStationID != "" && s.ToStationID != f.ToStationID:
		return false
	case f.StationID != "" && s.FromStationID != f.StationID && s.ToStationID != f.StationID:
		return false
	case f.Status != "" && s.Status != f.Status:
		return false
	case !f.CreatedFrom.IsZero() && s.CreatedAt.Before(f.CreatedFrom):
		return false
	case !f.CreatedTo.IsZero() && !s.CreatedAt.Before(f.CreatedTo):
		return false
	default:
		return true
	}
}

type TransitRouteRepository interface {
	Add(ctx context.Context, r *transit.Route, e *event.WarehouseEvent) error
	Update(ctx context.Context, r *transit.Route, e *event.WarehouseEvent) error
	Get(ctx context.Context, id kernel.UUID) (*transit.Route, error)
	// List returns routes newest first.
	List(ctx context.Context, filter RouteFilter) ([]*transit.Route, error)
}
