package ports

import (
	"context"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/manifest"
)

type ManifestFilter struct {
	StationID string
	Status    manifest.Status
	Type      manifest.Type
	Limit     int
}

// ManifestRepository persists manifests. Like parcels, each write carries
// its audit event.
type ManifestRepository interface {
	Add(ctx context.Context, m *manifest.Manifest, e *event.WarehouseEvent) error
	Update(ctx context.Context, m *manifest.Manifest, e *event.WarehouseEvent) error
	Get(ctx context.Context, id kernel.UUID) (*manifest.Manifest, error)
	// List returns manifests newest first.
	List(ctx context.Context, filter ManifestFilter) ([]*manifest.Manifest, error)
}
