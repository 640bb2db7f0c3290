// Package errs provides the typed errors shared by the parcel engine.
//
// Each error type follows one pattern: a sentinel variable, a struct carrying
// the details, constructors with and without a cause, Error() and Unwrap().
// Callers branch with errors.Is on the sentinels or KindOf for the category
// reported over the wire:
//   - ObjectNotFoundError: NotFound
//   - StationMismatchError: StationMismatch
//   - InvalidTransitionError: InvalidTransition
//   - ValueIsRequiredError: MissingField
//   - BatchConflictError: BatchConflict (the only retryable kind)
//   - ErrMissingStationContext: MissingStationContext
package errs
