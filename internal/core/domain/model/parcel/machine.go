package parcel

import (
	"errors"
	"fmt"
	"strings"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/pkg/errs"
)

// Input carries the operator-supplied data an event may require.
type Input struct {
	SortBin    string
	RouteCode  string
	ManifestID kernel.UUID
	// Reason is the return reason for RequestReturn and ReceiveReturn and
	// the free-text cancellation note for Cancel.
	Reason string
}

// Patch lists the fields a transition writes besides the status. Nil means
// untouched.
type Patch struct {
	Station       *kernel.Station
	SortBin       *string
	RouteCode     *string
	ManifestID    *kernel.UUID
	ClearManifest bool
	ReturnReason  *string
}

// Decision is the outcome of an accepted transition. NoOp decisions come
// from repeated requests and must not be persisted.
type Decision struct {
	Event Event
	From  Status
	Next  Status
	Patch Patch
	NoOp  bool
}

type field string

const (
	fieldSortBin    field = "sortBin"
	fieldRouteCode  field = "routeCode"
	fieldManifestID field = "manifestId"
	fieldReason     field = "returnReason"
)

type rule struct {
	from          func(Status) bool
	next          Status
	stationScoped bool
	requires      []field
	// takesCustody moves the parcel to the actor's station.
	takesCustody bool
}

func oneOf(statuses ...Status) func(Status) bool {
	return func(s Status) bool {
		for _, allowed := range statuses {
			if s == allowed {
				return true
			}
		}
		return false
	}
}

func nonTerminal(s Status) bool { return !s.IsTerminal() }

var rules = map[Event]rule{
	ScanIn: {
		from:         nonTerminal,
		next:         InboundReceived,
		takesCustody: true,
	},
	BeginSort: {
		from:          oneOf(InboundReceived),
		next:          Sorting,
		stationScoped: true,
	},
	Sort: {
		from:          oneOf(InboundReceived, Sorting),
		next:          Sorted,
		stationScoped: true,
		requires:      []field{fieldSortBin, fieldRouteCode},
	},
	AddToManifest: {
		from:          oneOf(Sorted),
		next:          Manifested,
		stationScoped: true,
		requires:      []field{fieldManifestID},
	},
	DispatchDelivery: {
		from:          oneOf(Manifested),
		next:          OutForDelivery,
		stationScoped: true,
	},
	DispatchTransfer: {
		from:          oneOf(Manifested),
		next:          TransferDispatched,
		stationScoped: true,
	},
	ArriveTransfer: {
		from:         oneOf(TransferDispatched),
		next:         TransferArrived,
		takesCustody: true,
	},
	Deliver: {
		from:          oneOf(OutForDelivery),
		next:          Delivered,
		stationScoped: true,
	},
	RequestReturn: {
		from:          oneOf(OutForDelivery),
		next:          ReturnRequested,
		stationScoped: true,
		requires:      []field{fieldReason},
	},
	ReceiveReturn: {
		from:         func(s Status) bool { return s != Cancelled },
		next:         ReturnReceived,
		requires:     []field{fieldReason},
		takesCustody: true,
	},
	Cancel: {
		from:          nonTerminal,
		next:          Cancelled,
		stationScoped: true,
	},
}

// IsStationScoped reports whether the event may only be performed by the
// station holding the parcel.
func IsStationScoped(ev Event) bool {
	return rules[ev].stationScoped
}

// Transition decides whether act may apply ev to p. Checks run in a fixed
// order: station context, repeated request, custody, source status,
// required fields. The first failing check decides the rejection, except
// that all missing fields are reported together.
func Transition(p *Parcel, ev Event, in Input, act actor.Context) (Decision, error) {
	if err := p.Validate(); err != nil {
		return Decision{}, err
	}
	station, err := act.RequireStation()
	if err != nil {
		return Decision{}, err
	}
	r, ok := rules[ev]
	if !ok {
		return Decision{}, errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("%q is not a parcel event", string(ev)))
	}

	decision := Decision{Event: ev, From: p.status, Next: r.next}

	if isRepeatedScan(p, r, in, station) {
		decision.NoOp = true
		return decision, nil
	}
	if r.stationScoped && !p.station.Is(station.ID()) {
		return Decision{}, errs.NewStationMismatchError(p.id, p.station.ID(), station.ID())
	}
	if !r.from(p.status) {
		return Decision{}, errs.NewInvalidTransitionError(p.id, string(p.status), string(ev))
	}
	if err := checkRequired(r.requires, in); err != nil {
		return Decision{}, err
	}

	decision.Patch = buildPatch(ev, r, in, station)
	return decision, nil
}

// isRepeatedScan reports whether the parcel already sits at the actor's
// station in the state ev leads to, as it does after a retried request.
// Sorting and manifesting also need the same bin, route and manifest.
func isRepeatedScan(p *Parcel, r rule, in Input, station kernel.Station) bool {
	if p.status != r.next || !p.station.Is(station.ID()) {
		return false
	}
	switch r.next {
	case Sorted:
		return p.sortBin == strings.TrimSpace(in.SortBin) && p.routeCode == strings.TrimSpace(in.RouteCode)
	case Manifested:
		return p.manifestID != nil && p.manifestID.IsEqual(in.ManifestID)
	default:
		return true
	}
}

func checkRequired(required []field, in Input) error {
	var missing []error
	for _, f := range required {
		var value string
		switch f {
		case fieldSortBin:
			value = in.SortBin
		case fieldRouteCode:
			value = in.RouteCode
		case fieldReason:
			value = in.Reason
		case fieldManifestID:
			if !in.ManifestID.IsZero() {
				value = in.ManifestID.String()
			}
		}
		if strings.TrimSpace(value) == "" {
			missing = append(missing, errs.NewValueIsRequiredError(string(f)))
		}
	}
	return errors.Join(missing...)
}

func buildPatch(ev Event, r rule, in Input, station kernel.Station) Patch {
	var patch Patch
	if r.takesCustody {
		s := station
		patch.Station = &s
	}
	switch ev {
	case Sort:
		bin, route := strings.TrimSpace(in.SortBin), strings.TrimSpace(in.RouteCode)
		patch.SortBin = &bin
		patch.RouteCode = &route
	case AddToManifest:
		id := in.ManifestID
		patch.ManifestID = &id
	case RequestReturn, ReceiveReturn:
		reason := strings.TrimSpace(in.Reason)
		patch.ReturnReason = &reason
	case Cancel:
		patch.ClearManifest = true
	}
	return patch
}
