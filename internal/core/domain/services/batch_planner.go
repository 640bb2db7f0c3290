package services

import (
	"errors"
	"fmt"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/pkg/errs"
)

// MaxBatchSize bounds a single bulk operation. It keeps one batch inside one
// reasonably sized transaction.
const MaxBatchSize = 500

type BatchPlanner struct {
	operator ParcelOperator
}

func NewBatchPlanner(operator ParcelOperator) BatchPlanner {
	return BatchPlanner{operator: operator}
}

// Plan applies ev with the same input to every parcel. If any parcel is
// rejected, Plan returns every rejection joined together and the parcels
// that were already mutated in memory must be discarded by the caller.
// Parcels already in the target state do not reject the batch; their
// outcomes carry no event and must not be written.
func (b BatchPlanner) Plan(parcels []*parcel.Parcel, ev parcel.Event, in parcel.Input, act actor.Context) ([]Outcome, error) {
	if err := CheckBatchSize(len(parcels)); err != nil {
		return nil, err
	}
	if _, err := act.RequireStation(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(parcels))
	var rejected []error
	seen := make(map[string]struct{}, len(parcels))

	for _, p := range parcels {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[p.ID()]; dup {
			rejected = append(rejected, errs.NewValueIsInvalidErrorWithCause("parcelIds", fmt.Errorf("parcel %s listed twice", p.ID())))
			continue
		}
		seen[p.ID()] = struct{}{}

		outcome, err := b.operator.Apply(p, ev, in, act)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		outcomes = append(outcomes, outcome)
	}

	if len(rejected) > 0 {
		return nil, errors.Join(rejected...)
	}
	return outcomes, nil
}

func CheckBatchSize(n int) error {
	if n == 0 {
		return errs.NewValueIsRequiredError("parcelIds")
	}
	if n > MaxBatchSize {
		return errs.NewValueIsOutOfRangeError("parcelIds", n, 1, MaxBatchSize)
	}
	return nil
}
