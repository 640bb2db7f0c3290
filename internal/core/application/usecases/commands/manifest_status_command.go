package commands

import (
	"errors"
	"strings"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"
)

var (
	ErrFinalizeManifestCommandIsNotConstructed = errors.New(
		"FinalizeManifestCommand must be created via NewFinalizeManifestCommand constructor",
	)
	ErrDispatchManifestCommandIsNotConstructed = errors.New(
		"DispatchManifestCommand must be created via NewDispatchManifestCommand constructor",
	)
)

type manifestRef struct {
	actor      actor.Context
	manifestID kernel.UUID
}

func newManifestRef(act actor.Context, manifestID string) (manifestRef, error) {
	ref := manifestRef{}
	if err := act.Validate(); err != nil {
		return manifestRef{}, err
	}
	ref.actor = act

	if strings.TrimSpace(manifestID) == "" {
		return manifestRef{}, errs.NewValueIsRequiredError("manifestId")
	}
	id, err := kernel.ParseUUID(manifestID)
	if err != nil {
		return manifestRef{}, err
	}
	ref.manifestID = id
	return ref, nil
}

// FinalizeManifestCommand freezes an OPEN manifest's membership.
type FinalizeManifestCommand struct {
	manifestRef
	guard guard.ConstructorGuard
}

func NewFinalizeManifestCommand(act actor.Context, manifestID string) (FinalizeManifestCommand, error) {
	ref, err := newManifestRef(act, manifestID)
	if err != nil {
		return FinalizeManifestCommand{}, err
	}
	return FinalizeManifestCommand{manifestRef: ref, guard: guard.NewConstructorGuard()}, nil
}

func (c FinalizeManifestCommand) Validate() error {
	return c.guard.Validate(ErrFinalizeManifestCommandIsNotConstructed)
}

// DispatchManifestCommand marks a FINALIZED manifest as gone with its vehicle.
type DispatchManifestCommand struct {
	manifestRef
	guard guard.ConstructorGuard
}

func NewDispatchManifestCommand(act actor.Context, manifestID string) (DispatchManifestCommand, error) {
	ref, err := newManifestRef(act, manifestID)
	if err != nil {
		return DispatchManifestCommand{}, err
	}
	return DispatchManifestCommand{manifestRef: ref, guard: guard.NewConstructorGuard()}, nil
}

func (c DispatchManifestCommand) Validate() error {
	return c.guard.Validate(ErrDispatchManifestCommandIsNotConstructed)
}
