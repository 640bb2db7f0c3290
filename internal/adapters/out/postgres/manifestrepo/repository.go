package manifestrepo

import (
	"context"
	"errors"

	"parcelhub/internal/adapters/out/postgres/dberrs"
	"parcelhub/internal/adapters/out/postgres/eventrepo"
	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/manifest"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"

	"gorm.io/gorm"
)

type aggregateTracker interface {
	TrackAggregate(id string, aggregate any)
}

type GormManifestRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

var _ ports.ManifestRepository = (*GormManifestRepository)(nil)

func NewGormManifestRepository(db *gorm.DB, tracker aggregateTracker) *GormManifestRepository {
	return &GormManifestRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormManifestRepository) Add(ctx context.Context, aggregate *manifest.Manifest, e *event.WarehouseEvent) error {
	if err := errors.Join(aggregate.Validate(), e.Validate()); err != nil {
		return err
	}

	if err := eventrepo.LockLog(ctx, r.db); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return dberrs.Translate("insert manifest", err)
	}
	if _, err := eventrepo.NewGormEventRepository(r.db).Append(ctx, e); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID().String(), aggregate)
	return nil
}

func (r *GormManifestRepository) Update(ctx context.Context, aggregate *manifest.Manifest, e *event.WarehouseEvent) error {
	if err := errors.Join(aggregate.Validate(), e.Validate()); err != nil {
		return err
	}

	if err := eventrepo.LockLog(ctx, r.db); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&ManifestDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return dberrs.Translate("update manifest", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundErrorWithCause("manifest", aggregate.ID().String(), gorm.ErrRecordNotFound)
	}
	if _, err := eventrepo.NewGormEventRepository(r.db).Append(ctx, e); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID().String(), aggregate)
	return nil
}

func (r *GormManifestRepository) Get(ctx context.Context, id kernel.UUID) (*manifest.Manifest, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ManifestDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("manifest", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormManifestRepository) List(ctx context.Context, filter ports.ManifestFilter) ([]*manifest.Manifest, error) {
	q := r.db.WithContext(ctx).Model(&ManifestDTO{})
	if filter.StationID != "" {
		q = q.Where("station_id = ?", filter.StationID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Type != "" {
		q = q.Where("type = ?", string(filter.Type))
	}

	var dtos []ManifestDTO
	if err := q.Order("created_at DESC").Limit(ports.EffectiveLimit(filter.Limit)).Find(&dtos).Error; err != nil {
		return nil, err
	}

	manifests := make([]*manifest.Manifest, 0, len(dtos))
	for _, dto := range dtos {
		m, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}
