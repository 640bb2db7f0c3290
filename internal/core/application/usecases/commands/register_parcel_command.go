package commands

import (
	"errors"
	"strings"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"
)

var ErrRegisterParcelCommandIsNotConstructed = errors.New(
	"RegisterParcelCommand must be created via NewRegisterParcelCommand constructor",
)

// RegisterParcelCommand books a parcel into the engine at the actor's
// station. Booking systems call it once per parcel.
type RegisterParcelCommand struct {
	actor      actor.Context
	parcelID   string
	trackingID string

	guard guard.ConstructorGuard
}

func NewRegisterParcelCommand(act actor.Context, parcelID, trackingID string) (RegisterParcelCommand, error) {
	if err := act.Validate(); err != nil {
		return RegisterParcelCommand{}, err
	}
	parcelID = strings.TrimSpace(parcelID)
	if parcelID == "" {
		return RegisterParcelCommand{}, errs.NewValueIsRequiredError("id")
	}

	return RegisterParcelCommand{
		actor:      act,
		parcelID:   parcelID,
		trackingID: strings.TrimSpace(trackingID),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterParcelCommand) Validate() error {
	return c.guard.Validate(ErrRegisterParcelCommandIsNotConstructed)
}
