package commands

import (
	"errors"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/manifest"
	"parcelhub/internal/pkg/guard"
)

var ErrCreateManifestCommandIsNotConstructed = errors.New(
	"CreateManifestCommand must be created via NewCreateManifestCommand constructor",
)

type CreateManifestCommand struct {
	actor     actor.Context
	typ       manifest.Type
	parcelIDs []string
	route     manifest.RouteInfo

	guard guard.ConstructorGuard
}

// NewCreateManifestCommand validates the request shape. Type-specific route
// fields are validated by the manifest itself.
func NewCreateManifestCommand(act actor.Context, typ string, parcelIDs []string, route manifest.RouteInfo) (CreateManifestCommand, error) {
	c := CreateManifestCommand{route: route}

	if err := errors.Join(
		c.setActor(act),
		c.setType(typ),
		c.setParcelIDs(parcelIDs),
	); err != nil {
		return CreateManifestCommand{}, err
	}

	c.guard = guard.NewConstructorGuard()
	return c, nil
}

func (c CreateManifestCommand) Validate() error {
	return c.guard.Validate(ErrCreateManifestCommandIsNotConstructed)
}

func (c *CreateManifestCommand) setActor(act actor.Context) error {
	if err := act.Validate(); err != nil {
		return err
	}
	c.actor = act
	return nil
}

func (c *CreateManifestCommand) setType(typ string) error {
	parsed, err := manifest.ParseType(typ)
	if err != nil {
		return err
	}
	c.typ = parsed
	return nil
}

func (c *CreateManifestCommand) setParcelIDs(ids []string) error {
	cleaned, err := cleanParcelIDs(ids)
	if err != nil {
		return err
	}
	c.parcelIDs = cleaned
	return nil
}
