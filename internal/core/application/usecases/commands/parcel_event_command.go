package commands

import (
	"errors"
	"strings"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"
)

var ErrParcelEventCommandIsNotConstructed = errors.New(
	"ParcelEventCommand must be created via one of the New*Command constructors",
)

// ParcelEventCommand applies one state machine event to one scanned parcel.
// The constructors below fix the event and the inputs it needs.
type ParcelEventCommand struct {
	actor actor.Context
	code  string
	event parcel.Event
	input parcel.Input

	guard guard.ConstructorGuard
}

func newParcelEventCommand(act actor.Context, code string, ev parcel.Event, in parcel.Input) (ParcelEventCommand, error) {
	c := ParcelEventCommand{event: ev, input: in}

	if err := errors.Join(
		c.setActor(act),
		c.setCode(code),
	); err != nil {
		return ParcelEventCommand{}, err
	}

	c.guard = guard.NewConstructorGuard()
	return c, nil
}

// NewScanInCommand registers the parcel's arrival at the actor's station.
func NewScanInCommand(act actor.Context, code string) (ParcelEventCommand, error) {
	return newParcelEventCommand(act, code, parcel.ScanIn, parcel.Input{})
}

func NewBeginSortCommand(act actor.Context, code string) (ParcelEventCommand, error) {
	return newParcelEventCommand(act, code, parcel.BeginSort, parcel.Input{})
}

func NewArriveTransferCommand(act actor.Context, code string) (ParcelEventCommand, error) {
	return newParcelEventCommand(act, code, parcel.ArriveTransfer, parcel.Input{})
}

func NewDeliverCommand(act actor.Context, code string) (ParcelEventCommand, error) {
	return newParcelEventCommand(act, code, parcel.Deliver, parcel.Input{})
}

func NewRequestReturnCommand(act actor.Context, code, reason string) (ParcelEventCommand, error) {
	return newParcelEventCommand(act, code, parcel.RequestReturn, parcel.Input{Reason: reason})
}

func NewReceiveReturnCommand(act actor.Context, code, reason string) (ParcelEventCommand, error) {
	return newParcelEventCommand(act, code, parcel.ReceiveReturn, parcel.Input{Reason: reason})
}

// NewCancelParcelCommand cancels a parcel. The reason is optional and only
// recorded on the event.
func NewCancelParcelCommand(act actor.Context, code, reason string) (ParcelEventCommand, error) {
	return newParcelEventCommand(act, code, parcel.Cancel, parcel.Input{Reason: reason})
}

func (c ParcelEventCommand) Validate() error {
	return c.guard.Validate(ErrParcelEventCommandIsNotConstructed)
}

func (c ParcelEventCommand) Actor() actor.Context { return c.actor }
func (c ParcelEventCommand) Code() string         { return c.code }
func (c ParcelEventCommand) Event() parcel.Event  { return c.event }
func (c ParcelEventCommand) Input() parcel.Input  { return c.input }

func (c *ParcelEventCommand) setActor(act actor.Context) error {
	if err := act.Validate(); err != nil {
		return err
	}
	c.actor = act
	return nil
}

func (c *ParcelEventCommand) setCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errs.NewValueIsRequiredError("code")
	}
	c.code = code
	return nil
}
