package parcel

import (
	"fmt"
	"strings"

	"parcelhub/internal/pkg/errs"
)

// Event is an operator action fed to the state machine. The same value is
// written as the warehouse event type, so replaying the log needs no mapping.
type Event string

const (
	ScanIn           Event = "SCAN_IN"
	BeginSort        Event = "BEGIN_SORT"
	Sort             Event = "SORT"
	AddToManifest    Event = "ADD_TO_MANIFEST"
	DispatchDelivery Event = "DISPATCH_DELIVERY"
	DispatchTransfer Event = "DISPATCH_TRANSFER"
	ArriveTransfer   Event = "ARRIVE_TRANSFER"
	Deliver          Event = "DELIVER"
	RequestReturn    Event = "REQUEST_RETURN"
	ReceiveReturn    Event = "RECEIVE_RETURN"
	Cancel           Event = "CANCEL"

	// Registered is written once when a parcel is booked. It is not a
	// transition; replay treats it as the start of the stream.
	Registered Event = "REGISTERED"
)

func ParseEvent(s string) (Event, error) {
	ev := Event(strings.ToUpper(strings.TrimSpace(s)))
	if ev == Registered {
		return ev, nil
	}
	if _, ok := rules[ev]; !ok {
		return "", errs.NewValueIsInvalidErrorWithCause("event", fmt.Errorf("%q is not a parcel event", s))
	}
	return ev, nil
}

func (e Event) String() string {
	return string(e)
}
