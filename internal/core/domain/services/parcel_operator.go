package services

import (
	"time"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/parcel"
)

// Outcome is an applied transition and its audit record. Event is nil for
// no-op decisions, which must not be written.
type Outcome struct {
	Parcel   *parcel.Parcel
	Decision parcel.Decision
	Event    *event.WarehouseEvent
}

// Changed reports whether the outcome has to be persisted.
func (o Outcome) Changed() bool {
	return !o.Decision.NoOp
}

type ParcelOperator struct {
	now func() time.Time
}

func NewParcelOperator(now func() time.Time) ParcelOperator {
	if now == nil {
		now = time.Now
	}
	return ParcelOperator{now: now}
}

// Apply decides ev for p, mutates p in place on success and returns the event
// to append alongside it.
func (o ParcelOperator) Apply(p *parcel.Parcel, ev parcel.Event, in parcel.Input, act actor.Context) (Outcome, error) {
	d, err := parcel.Transition(p, ev, in, act)
	if err != nil {
		return Outcome{}, err
	}
	if d.NoOp {
		return Outcome{Parcel: p, Decision: d}, nil
	}

	// Captured before Apply so CANCEL still references the manifest it left.
	reference := referenceFor(p, d, in)

	at := o.now()
	if err := p.Apply(d, at); err != nil {
		return Outcome{}, err
	}

	e, err := event.NewParcelEvent(p, ev, act, in.Reason, reference, at)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Parcel: p, Decision: d, Event: e}, nil
}

func referenceFor(p *parcel.Parcel, d parcel.Decision, in parcel.Input) *kernel.UUID {
	if d.Event == parcel.AddToManifest && !in.ManifestID.IsZero() {
		id := in.ManifestID
		return &id
	}
	return p.ManifestID()
}
