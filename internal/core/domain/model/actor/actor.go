// Package actor describes who performs a warehouse operation and from which
// station. Every operation receives the actor explicitly; nothing reads it
// from ambient session state.
package actor

import (
	"errors"
	"fmt"
	"strings"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"
)

var ErrActorIsNotConstructed = errors.New("actor context must be created via NewContext")

type Role string

const (
	RoleClerk      Role = "clerk"
	RoleDispatcher Role = "dispatcher"
	RoleRider      Role = "rider"
	RoleAdmin      Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleClerk, RoleDispatcher, RoleRider, RoleAdmin:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", s))
	}
}

// Context is the resolved identity of the caller. The station may be absent:
// such an actor can still read, but every mutation rejects it with
// errs.ErrMissingStationContext.
type Context struct {
	id      string
	station kernel.Station
	role    Role
	guard   guard.ConstructorGuard
}

func NewContext(actorID, stationID, stationName string, role Role) (Context, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return Context{}, errs.NewValueIsRequiredError("actorId")
	}
	if role == "" {
		role = RoleClerk
	}
	if _, err := ParseRole(string(role)); err != nil {
		return Context{}, err
	}

	return Context{
		id:      actorID,
		station: kernel.RestoreStation(strings.TrimSpace(stationID), strings.TrimSpace(stationName)),
		role:    role,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c Context) Validate() error {
	return c.guard.Validate(ErrActorIsNotConstructed)
}

func (c Context) ID() string              { return c.id }
func (c Context) Role() Role              { return c.role }
func (c Context) Station() kernel.Station { return c.station }
func (c Context) StationID() string       { return c.station.ID() }

// RequireStation returns the actor's station or ErrMissingStationContext.
func (c Context) RequireStation() (kernel.Station, error) {
	if err := c.Validate(); err != nil {
		return kernel.Station{}, err
	}
	if c.station.IsZero() {
		return kernel.Station{}, errs.ErrMissingStationContext
	}
	return c.station, nil
}
