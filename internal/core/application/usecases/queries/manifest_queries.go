package queries

import (
	"context"
	"errors"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/manifest"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"
)

var (
	ErrListManifestsQueryIsNotConstructed = errors.New(
		"ListManifestsQuery must be created via NewListManifestsQuery constructor",
	)
	ErrGetManifestQueryIsNotConstructed = errors.New(
		"GetManifestQuery must be created via NewGetManifestQuery constructor",
	)
)

// ListManifestsQuery lists the manifests opened at the actor's station.
type ListManifestsQuery struct {
	filter ports.ManifestFilter
	guard  guard.ConstructorGuard
}

// NewListManifestsQuery takes optional status and type filters; empty
// strings do not filter.
func NewListManifestsQuery(act actor.Context, status, typ string, limit int) (ListManifestsQuery, error) {
	station, err := act.RequireStation()
	if err != nil {
		return ListManifestsQuery{}, err
	}
	if limit < 0 || limit > ports.MaxListLimit {
		return ListManifestsQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, ports.MaxListLimit)
	}

	filter := ports.ManifestFilter{StationID: station.ID(), Limit: limit}
	if status != "" {
		if filter.Status, err = manifest.ParseStatus(status); err != nil {
			return ListManifestsQuery{}, err
		}
	}
	if typ != "" {
		if filter.Type, err = manifest.ParseType(typ); err != nil {
			return ListManifestsQuery{}, err
		}
	}

	return ListManifestsQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

func (q ListManifestsQuery) Validate() error {
	return q.guard.Validate(ErrListManifestsQueryIsNotConstructed)
}

type GetManifestQuery struct {
	id    kernel.UUID
	guard guard.ConstructorGuard
}

func NewGetManifestQuery(id string) (GetManifestQuery, error) {
	parsed, err := kernel.ParseUUID(id)
	if err != nil {
		return GetManifestQuery{}, err
	}
	return GetManifestQuery{id: parsed, guard: guard.NewConstructorGuard()}, nil
}

func (q GetManifestQuery) Validate() error {
	return q.guard.Validate(ErrGetManifestQueryIsNotConstructed)
}

type ManifestQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewManifestQueryHandler(uowFactory ports.UnitOfWorkFactory) ManifestQueryHandler {
	return ManifestQueryHandler{uowFactory: uowFactory}
}

func (h ManifestQueryHandler) List(ctx context.Context, query ListManifestsQuery) ([]manifest.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	manifests, err := h.uowFactory.Create().ManifestRepository().List(ctx, query.filter)
	if err != nil {
		return nil, err
	}

	out := make([]manifest.Snapshot, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, m.Snapshot())
	}
	return out, nil
}

func (h ManifestQueryHandler) Get(ctx context.Context, query GetManifestQuery) (manifest.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return manifest.Snapshot{}, err
	}

	m, err := h.uowFactory.Create().ManifestRepository().Get(ctx, query.id)
	if err != nil {
		return manifest.Snapshot{}, err
	}
	return m.Snapshot(), nil
}
