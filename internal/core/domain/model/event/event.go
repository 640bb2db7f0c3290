// Package event models the append-only warehouse audit log. Events are
// created once, stored once and never changed; the log is the ground truth
// for what happened to a parcel, a manifest or a transit route.
package event

import (
	"errors"
	"strings"
	"time"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/pkg/errs"
)

var ErrEventIsNotConstructed = errors.New("WarehouseEvent must be created via a New*Event constructor")

// Type is the event type. Parcel events reuse the parcel.Event names.
type Type string

const (
	ManifestCreated    Type = "MANIFEST_CREATED"
	ManifestFinalized  Type = "MANIFEST_FINALIZED"
	ManifestDispatched Type = "MANIFEST_DISPATCHED"

	RouteCreated    Type = "ROUTE_CREATED"
	RouteDispatched Type = "ROUTE_DISPATCHED"
	RouteArrived    Type = "ROUTE_ARRIVED"
	RouteCancelled  Type = "ROUTE_CANCELLED"
)

func TypeOf(ev parcel.Event) Type {
	return Type(ev)
}

// ParcelEvent converts back to the state machine event when t names one.
func (t Type) ParcelEvent() (parcel.Event, bool) {
	ev, err := parcel.ParseEvent(string(t))
	if err != nil {
		return "", false
	}
	return ev, true
}

// WarehouseEvent is one audit record. Sequence is zero until the store
// assigns it on append; it orders the whole log.
type WarehouseEvent struct {
	id          kernel.UUID
	sequence    int64
	typ         Type
	stationID   string
	stationName string
	parcelID    string
	trackingID  string
	actorID     string
	reason      string
	referenceID *kernel.UUID
	createdAt   time.Time

	isConstructed bool
}

// NewParcelEvent records ev performed on p by act. reference links the
// manifest the parcel joined or left, when there is one.
func NewParcelEvent(p *parcel.Parcel, ev parcel.Event, act actor.Context, reason string, reference *kernel.UUID, at time.Time) (*WarehouseEvent, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e, err := newEvent(TypeOf(ev), act, reason, reference, at)
	if err != nil {
		return nil, err
	}
	e.parcelID = p.ID()
	e.trackingID = p.TrackingID()
	if e.stationID == "" {
		e.stationID = p.Station().ID()
		e.stationName = p.Station().Name()
	}
	return e, nil
}

// NewManifestEvent records a manifest state change.
func NewManifestEvent(typ Type, manifestID kernel.UUID, act actor.Context, at time.Time) (*WarehouseEvent, error) {
	return newReferenceEvent(typ, manifestID, act, at)
}

// NewRouteEvent records a transit route state change.
func NewRouteEvent(typ Type, routeID kernel.UUID, act actor.Context, at time.Time) (*WarehouseEvent, error) {
	return newReferenceEvent(typ, routeID, act, at)
}

func newReferenceEvent(typ Type, reference kernel.UUID, act actor.Context, at time.Time) (*WarehouseEvent, error) {
	if err := reference.Validate(); err != nil {
		return nil, err
	}
	return newEvent(typ, act, "", &reference, at)
}

func newEvent(typ Type, act actor.Context, reason string, reference *kernel.UUID, at time.Time) (*WarehouseEvent, error) {
	if strings.TrimSpace(string(typ)) == "" {
		return nil, errs.NewValueIsRequiredError("type")
	}
	if err := act.Validate(); err != nil {
		return nil, err
	}

	var ref *kernel.UUID
	if reference != nil && !reference.IsZero() {
		r := *reference
		ref = &r
	}

	return &WarehouseEvent{
		id:            kernel.NewUUID(),
		typ:           typ,
		stationID:     act.Station().ID(),
		stationName:   act.Station().Name(),
		actorID:       act.ID(),
		reason:        strings.TrimSpace(reason),
		referenceID:   ref,
		createdAt:     at.UTC(),
		isConstructed: true,
	}, nil
}

// Snapshot is the exported form used by adapters.
type Snapshot struct {
	ID          kernel.UUID
	Sequence    int64
	Type        Type
	StationID   string
	StationName string
	ParcelID    string
	TrackingID  string
	ActorID     string
	Reason      string
	ReferenceID *kernel.UUID
	CreatedAt   time.Time
}

func Restore(s Snapshot) (*WarehouseEvent, error) {
	if err := s.ID.Validate(); err != nil {
		return nil, err
	}
	if s.Type == "" {
		return nil, errs.NewValueIsRequiredError("type")
	}
	e := &WarehouseEvent{
		id:            s.ID,
		sequence:      s.Sequence,
		typ:           s.Type,
		stationID:     s.StationID,
		stationName:   s.StationName,
		parcelID:      s.ParcelID,
		trackingID:    s.TrackingID,
		actorID:       s.ActorID,
		reason:        s.Reason,
		createdAt:     s.CreatedAt.UTC(),
		isConstructed: true,
	}
	if s.ReferenceID != nil {
		ref := *s.ReferenceID
		e.referenceID = &ref
	}
	return e, nil
}

func (e *WarehouseEvent) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEventIsNotConstructed
	}
	return nil
}

// WithSequence returns a copy carrying the store-assigned sequence.
func (e *WarehouseEvent) WithSequence(seq int64) *WarehouseEvent {
	cp := *e
	cp.sequence = seq
	return &cp
}

func (e *WarehouseEvent) ID() kernel.UUID      { return e.id }
func (e *WarehouseEvent) Sequence() int64      { return e.sequence }
func (e *WarehouseEvent) Type() Type           { return e.typ }
func (e *WarehouseEvent) StationID() string    { return e.stationID }
func (e *WarehouseEvent) StationName() string  { return e.stationName }
func (e *WarehouseEvent) ParcelID() string     { return e.parcelID }
func (e *WarehouseEvent) TrackingID() string   { return e.trackingID }
func (e *WarehouseEvent) ActorID() string      { return e.actorID }
func (e *WarehouseEvent) Reason() string       { return e.reason }
func (e *WarehouseEvent) CreatedAt() time.Time { return e.createdAt }

// ReferenceID is the manifest or route the event belongs to, if any.
func (e *WarehouseEvent) ReferenceID() *kernel.UUID {
	if e.referenceID == nil {
		return nil
	}
	ref := *e.referenceID
	return &ref
}

func (e *WarehouseEvent) Snapshot() Snapshot {
	s := Snapshot{
		ID:          e.id,
		Sequence:    e.sequence,
		Type:        e.typ,
		StationID:   e.stationID,
		StationName: e.stationName,
		ParcelID:    e.parcelID,
		TrackingID:  e.trackingID,
		ActorID:     e.actorID,
		Reason:      e.reason,
		CreatedAt:   e.createdAt,
	}
	if e.referenceID != nil {
		ref := *e.referenceID
		s.ReferenceID = &ref
	}
	return s
}
