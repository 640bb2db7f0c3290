package parcel

import (
	"fmt"

	"parcelhub/internal/pkg/errs"
)

// Replay folds a parcel's event stream, oldest first, into the status it
// implies. Custody and required fields were checked when the events were
// written, so only the status table is consulted here. A stream must start
// with Registered or with a parcel already known to be in initial.
func Replay(initial Status, events []Event) (Status, error) {
	if err := initial.Validate(); err != nil {
		return "", err
	}

	status := initial
	for i, ev := range events {
		if ev == Registered {
			if i != 0 {
				return "", errs.NewValueIsInvalidErrorWithCause("events", fmt.Errorf("%s at position %d", ev, i))
			}
			status = Created
			continue
		}
		r, ok := rules[ev]
		if !ok {
			return "", errs.NewValueIsInvalidErrorWithCause("events", fmt.Errorf("unknown event %q at position %d", string(ev), i))
		}
		if !r.from(status) {
			return "", errs.NewInvalidTransitionError(fmt.Sprintf("event #%d", i), string(status), string(ev))
		}
		status = r.next
	}
	return status, nil
}
