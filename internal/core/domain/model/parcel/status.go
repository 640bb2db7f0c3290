package parcel

import (
	"fmt"
	"strings"

	"parcelhub/internal/pkg/errs"
)

// Status is the lifecycle position of a parcel. Values are persisted as-is.
type Status string

const (
	Created            Status = "created"
	InboundReceived    Status = "inbound_received"
	Sorting            Status = "sorting"
	Sorted             Status = "sorted"
	Manifested         Status = "manifested"
	OutForDelivery     Status = "out_for_delivery"
	Delivered          Status = "delivered"
	ReturnRequested    Status = "return_requested"
	ReturnReceived     Status = "return_received"
	TransferDispatched Status = "transfer_dispatched"
	TransferArrived    Status = "transfer_arrived"
	Cancelled          Status = "cancelled"
)

var allStatuses = []Status{
	Created, InboundReceived, Sorting, Sorted, Manifested, OutForDelivery,
	Delivered, ReturnRequested, ReturnReceived, TransferDispatched, TransferArrived, Cancelled,
}

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

func (s Status) Validate() error {
	for _, known := range allStatuses {
		if s == known {
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a parcel status", string(s)))
}

// IsTerminal reports whether no further event can move the parcel.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

func (s Status) String() string {
	return string(s)
}
