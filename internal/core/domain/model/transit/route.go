// Package transit tracks vehicle trips between stations. A route is a sibling
// record to transfer manifests; it never moves parcels itself.
package transit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/pkg/errs"
)

var ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute or RestoreRoute")

// Status of a trip. PLANNED -> DISPATCHED -> ARRIVED is strictly linear;
// CANCELLED is reachable from PLANNED and DISPATCHED. ARRIVED and CANCELLED
// are terminal.
type Status string

const (
	Planned    Status = "PLANNED"
	Dispatched Status = "DISPATCHED"
	Arrived    Status = "ARRIVED"
	Cancelled  Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	Planned:    {Dispatched, Cancelled},
	Dispatched: {Arrived, Cancelled},
	Arrived:    {},
	Cancelled:  {},
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := transitions[st]; !ok {
		return "", errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a route status", s))
	}
	return st, nil
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Vehicle is optional trip metadata.
type Vehicle struct {
	VehicleNo  string
	DriverName string
}

type Route struct {
	id          kernel.UUID
	from        kernel.Station
	to          kernel.Station
	vehicle     Vehicle
	status      Status
	createdAt   time.Time
	departureAt *time.Time
	arrivedAt   *time.Time

	isConstructed bool
}

// NewRoute plans a trip from the actor's station to another one.
func NewRoute(id kernel.UUID, from, to kernel.Station, vehicle Vehicle, at time.Time) (*Route, error) {
	r := &Route{
		status:        Planned,
		createdAt:     at.UTC(),
		isConstructed: true,
		vehicle: Vehicle{
			VehicleNo:  strings.TrimSpace(vehicle.VehicleNo),
			DriverName: strings.TrimSpace(vehicle.DriverName),
		},
	}

	if err := errors.Join(id.Validate(), r.setStations(from, to)); err != nil {
		return nil, err
	}
	r.id = id
	return r, nil
}

func (r *Route) setStations(from, to kernel.Station) error {
	if from.IsZero() {
		return errs.ErrMissingStationContext
	}
	if to.IsZero() {
		return errs.NewValueIsRequiredError("toStationId")
	}
	if from.Is(to.ID()) {
		return errs.NewValueIsInvalidErrorWithCause("toStationId", errors.New("destination equals origin"))
	}
	r.from = from
	r.to = to
	return nil
}

// Advance moves the route to target. Either end of the trip may advance it:
// the origin dispatches, the destination confirms arrival. Timestamps are
// stamped on entering DISPATCHED and ARRIVED and never overwritten.
func (r *Route) Advance(target Status, actorStationID string, at time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if _, err := ParseStatus(string(target)); err != nil {
		return err
	}
	if !r.from.Is(actorStationID) && !r.to.Is(actorStationID) {
		return errs.NewStationMismatchError(r.id.String(), r.from.ID()+"->"+r.to.ID(), actorStationID)
	}
	if !r.status.CanTransitionTo(target) {
		return errs.NewInvalidTransitionError(r.id.String(), string(r.status), "move to "+string(target))
	}

	stamp := at.UTC()
	switch target {
	case Dispatched:
		if r.departureAt == nil {
			r.departureAt = &stamp
		}
	case Arrived:
		if r.arrivedAt == nil {
			r.arrivedAt = &stamp
		}
	}
	r.status = target
	return nil
}

func (r *Route) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRouteIsNotConstructed
	}
	return nil
}

func (r *Route) ID() kernel.UUID      { return r.id }
func (r *Route) From() kernel.Station { return r.from }
func (r *Route) To() kernel.Station   { return r.to }
func (r *Route) Vehicle() Vehicle     { return r.vehicle }
func (r *Route) Status() Status       { return r.status }

// Snapshot is the exported form used by adapters.
type Snapshot struct {
	ID              kernel.UUID
	FromStationID   string
	FromStationName string
	ToStationID     string
	ToStationName   string
	Vehicle         Vehicle
	Status          Status
	CreatedAt       time.Time
	DepartureAt     *time.Time
	ArrivedAt       *time.Time
}

func (r *Route) Snapshot() Snapshot {
	return Snapshot{
		ID:              r.id,
		FromStationID:   r.from.ID(),
		FromStationName: r.from.Name(),
		ToStationID:     r.to.ID(),
		ToStationName:   r.to.Name(),
		Vehicle:         r.vehicle,
		Status:          r.status,
		CreatedAt:       r.createdAt,
		DepartureAt:     copyTime(r.departureAt),
		ArrivedAt:       copyTime(r.arrivedAt),
	}
}

func RestoreRoute(s Snapshot) (*Route, error) {
	if _, err := ParseStatus(string(s.Status)); err != nil {
		return nil, err
	}
	r, err := NewRoute(s.ID,
		kernel.RestoreStation(s.FromStationID, s.FromStationName),
		kernel.RestoreStation(s.ToStationID, s.ToStationName),
		s.Vehicle, s.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.status = s.Status
	r.departureAt = copyTime(s.DepartureAt)
	r.arrivedAt = copyTime(s.ArrivedAt)
	return r, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
