package errs

import "errors"

// Kind names an error category reported to callers.
type Kind string

const (
	KindNotFound              Kind = "NotFound"
	KindStationMismatch       Kind = "StationMismatch"
	KindInvalidTransition     Kind = "InvalidTransition"
	KindMissingField          Kind = "MissingField"
	KindInvalidValue          Kind = "InvalidValue"
	KindBatchConflict         Kind = "BatchConflict"
	KindMissingStationContext Kind = "MissingStationContext"
	KindInternal              Kind = "Internal"
)

// KindOf classifies err. Joined errors resolve to the first matching kind
// in declaration order, so a batch holding both a station mismatch and an
// invalid transition reports StationMismatch.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingStationContext):
		return KindMissingStationContext
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrStationMismatch):
		return KindStationMismatch
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrValueIsRequired):
		return KindMissingField
	case errors.Is(err, ErrValueIsInvalid), errors.Is(err, ErrValueIsOutOfRange):
		return KindInvalidValue
	case errors.Is(err, ErrBatchConflict):
		return KindBatchConflict
	default:
		return KindInternal
	}
}

// Retryable reports whether the caller may safely resubmit the same action.
func Retryable(err error) bool {
	return KindOf(err) == KindBatchConflict
}
