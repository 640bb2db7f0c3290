package commands

import (
	"errors"
	"strings"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/transit"
	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"
)

var (
	ErrCreateTransitRouteCommandIsNotConstructed = errors.New(
		"CreateTransitRouteCommand must be created via NewCreateTransitRouteCommand constructor",
	)
	ErrAdvanceTransitRouteCommandIsNotConstructed = errors.New(
		"AdvanceTransitRouteCommand must be created via NewAdvanceTransitRouteCommand constructor",
	)
)

// CreateTransitRouteCommand plans a trip from the actor's station.
type CreateTransitRouteCommand struct {
	actor   actor.Context
	to      kernel.Station
	vehicle transit.Vehicle

	guard guard.ConstructorGuard
}

func NewCreateTransitRouteCommand(act actor.Context, toStationID, toStationName string, vehicle transit.Vehicle) (CreateTransitRouteCommand, error) {
	c := CreateTransitRouteCommand{vehicle: vehicle}

	if err := act.Validate(); err != nil {
		return CreateTransitRouteCommand{}, err
	}
	c.actor = act

	to, err := kernel.NewStation(toStationID, toStationName)
	if err != nil {
		return CreateTransitRouteCommand{}, errs.NewValueIsRequiredError("toStationId")
	}
	c.to = to

	c.guard = guard.NewConstructorGuard()
	return c, nil
}

func (c CreateTransitRouteCommand) Validate() error {
	return c.guard.Validate(ErrCreateTransitRouteCommandIsNotConstructed)
}

// AdvanceTransitRouteCommand moves a route to the requested status.
type AdvanceTransitRouteCommand struct {
	actor   actor.Context
	routeID kernel.UUID
	target  transit.Status

	guard guard.ConstructorGuard
}

func NewAdvanceTransitRouteCommand(act actor.Context, routeID, status string) (AdvanceTransitRouteCommand, error) {
	c := AdvanceTransitRouteCommand{}

	if err := errors.Join(
		c.setActor(act),
		c.setRouteID(routeID),
		c.setTarget(status),
	); err != nil {
		return AdvanceTransitRouteCommand{}, err
	}

	c.guard = guard.NewConstructorGuard()
	return c, nil
}

func (c AdvanceTransitRouteCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceTransitRouteCommandIsNotConstructed)
}

func (c *AdvanceTransitRouteCommand) setActor(act actor.Context) error {
	if err := act.Validate(); err != nil {
		return err
	}
	c.actor = act
	return nil
}

func (c *AdvanceTransitRouteCommand) setRouteID(routeID string) error {
	if strings.TrimSpace(routeID) == "" {
		return errs.NewValueIsRequiredError("routeId")
	}
	id, err := kernel.ParseUUID(routeID)
	if err != nil {
		return err
	}
	c.routeID = id
	return nil
}

func (c *AdvanceTransitRouteCommand) setTarget(status string) error {
	if strings.TrimSpace(status) == "" {
		return errs.NewValueIsRequiredError("status")
	}
	target, err := transit.ParseStatus(status)
	if err != nil {
		return err
	}
	c.target = target
	return nil
}
