package commands

import (
	"errors"
	"fmt"
	"strings"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/manifest"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"
)

var ErrScanOutCommandIsNotConstructed = errors.New("ScanOutCommand must be created via NewScanOutCommand constructor")

// ScanOutMode says which outbound movement the parcel leaves on.
type ScanOutMode string

const (
	ScanOutDelivery ScanOutMode = "delivery"
	ScanOutTransfer ScanOutMode = "transfer"
)

func ParseScanOutMode(s string) (ScanOutMode, error) {
	switch m := ScanOutMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ScanOutDelivery, ScanOutTransfer:
		return m, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("mode", fmt.Errorf("%q is not delivery or transfer", s))
	}
}

func (m ScanOutMode) event() parcel.Event {
	if m == ScanOutTransfer {
		return parcel.DispatchTransfer
	}
	return parcel.DispatchDelivery
}

func (m ScanOutMode) manifestType() manifest.Type {
	if m == ScanOutTransfer {
		return manifest.Transfer
	}
	return manifest.Delivery
}

type ScanOutCommand struct {
	actor actor.Context
	code  string
	mode  ScanOutMode

	guard guard.ConstructorGuard
}

func NewScanOutCommand(act actor.Context, code string, mode ScanOutMode) (ScanOutCommand, error) {
	c := ScanOutCommand{}

	if err := errors.Join(
		c.setActor(act),
		c.setCode(code),
		c.setMode(mode),
	); err != nil {
		return ScanOutCommand{}, err
	}

	c.guard = guard.NewConstructorGuard()
	return c, nil
}

func (c ScanOutCommand) Validate() error {
	return c.guard.Validate(ErrScanOutCommandIsNotConstructed)
}

func (c *ScanOutCommand) setActor(act actor.Context) error {
	if err := act.Validate(); err != nil {
		return err
	}
	c.actor = act
	return nil
}

func (c *ScanOutCommand) setCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errs.NewValueIsRequiredError("code")
	}
	c.code = code
	return nil
}

func (c *ScanOutCommand) setMode(mode ScanOutMode) error {
	parsed, err := ParseScanOutMode(string(mode))
	if err != nil {
		return err
	}
	c.mode = parsed
	return nil
}
