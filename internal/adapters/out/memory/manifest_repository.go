package memory

import (
	"context"
	"sort"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/manifest"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"
)

type manifestRepository struct {
	uow *UnitOfWork
}

func (r *manifestRepository) Add(ctx context.Context, m *manifest.Manifest, e *event.WarehouseEvent) error {
	return r.save(ctx, m, e, true)
}

func (r *manifestRepository) Update(ctx context.Context, m *manifest.Manifest, e *event.WarehouseEvent) error {
	return r.save(ctx, m, e, false)
}

func (r *manifestRepository) save(ctx context.Context, m *manifest.Manifest, e *event.WarehouseEvent, isNew bool) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !isNew {
		if _, ok := r.lookup(m.ID()); !ok {
			return errs.NewObjectNotFoundError("manifest", m.ID().String())
		}
	}

	return r.uow.write(func(b *batch) error {
		if prev, ok := b.manifests[m.ID()]; ok {
			isNew = isNew || prev.isNew
		}
		b.manifests[m.ID()] = stagedManifest{snapshot: m.Snapshot(), isNew: isNew}
		b.events = append(b.events, e.Snapshot())
		return nil
	})
}

func (r *manifestRepository) lookup(id kernel.UUID) (manifest.Snapshot, bool) {
	if r.uow.tx != nil {
		if staged, ok := r.uow.tx.manifests[id]; ok {
			return staged.snapshot, true
		}
	}
	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	s, ok := r.uow.store.manifests[id]
	return s, ok
}

func (r *manifestRepository) Get(ctx context.Context, id kernel.UUID) (*manifest.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := r.lookup(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("manifest", id.String())
	}
	return manifest.RestoreManifest(s)
}

func (r *manifestRepository) List(ctx context.Context, filter ports.ManifestFilter) ([]*manifest.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.uow.store.mu.RLock()
	all := make([]manifest.Snapshot, 0, len(r.uow.store.manifests))
	for _, s := range r.uow.store.manifests {
		all = append(all, s)
	}
	r.uow.store.mu.RUnlock()

	matched := make([]manifest.Snapshot, 0, len(all))
	for _, s := range all {
		if (filter.StationID == "" || s.StationID == filter.StationID) &&
			(filter.Status == "" || s.Status == filter.Status) &&
			(filter.Type == "" || s.Type == filter.Type) {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	if limit := ports.EffectiveLimit(filter.Limit); len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*manifest.Manifest, 0, len(matched))
	for _, s := range matched {
		m, err := manifest.RestoreManifest(s)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
