package parcelrepo

import (
	"context"
	"errors"

	"parcelhub/internal/adapters/out/postgres/dberrs"
	"parcelhub/internal/adapters/out/postgres/eventrepo"
	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"

	"gorm.io/gorm"
)

// aggregateTracker lets the unit of work announce changed parcels on commit.
type aggregateTracker interface {
	TrackAggregate(id string, aggregate any)
}

type GormParcelRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

var _ ports.ParcelRepository = (*GormParcelRepository)(nil)

func NewGormParcelRepository(db *gorm.DB, tracker aggregateTracker) *GormParcelRepository {
	return &GormParcelRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormParcelRepository) Add(ctx context.Context, aggregate *parcel.Parcel, e *event.WarehouseEvent) error {
	if err := errors.Join(aggregate.Validate(), e.Validate()); err != nil {
		return err
	}

	if err := eventrepo.LockLog(ctx, r.db); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return dberrs.Translate("insert parcel", err)
	}
	if _, err := eventrepo.NewGormEventRepository(r.db).Append(ctx, e); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes every column, so cleared fields such as a dropped manifest
// reference are stored as empty.
func (r *GormParcelRepository) Update(ctx context.Context, aggregate *parcel.Parcel, e *event.WarehouseEvent) error {
	if err := errors.Join(aggregate.Validate(), e.Validate()); err != nil {
		return err
	}

	if err := eventrepo.LockLog(ctx, r.db); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&ParcelDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return dberrs.Translate("update parcel", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundErrorWithCause("parcel", dto.ID, gorm.ErrRecordNotFound)
	}
	if _, err := eventrepo.NewGormEventRepository(r.db).Append(ctx, e); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormParcelRepository) Get(ctx context.Context, id string) (*parcel.Parcel, error) {
	var dto ParcelDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("parcel", id)
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormParcelRepository) FindByTrackingID(ctx context.Context, trackingID string) (*parcel.Parcel, error) {
	var dto ParcelDTO
	err := r.db.WithContext(ctx).Where("tracking_id = ?", trackingID).Order("id").Limit(1).Take(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("parcel", trackingID)
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormParcelRepository) GetMany(ctx context.Context, ids []string) ([]*parcel.Parcel, error) {
	if len(ids) == 0 {
		return []*parcel.Parcel{}, nil
	}

	var dtos []ParcelDTO
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&dtos).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]ParcelDTO, len(dtos))
	for _, dto := range dtos {
		byID[dto.ID] = dto
	}

	parcels := make([]*parcel.Parcel, 0, len(ids))
	for _, id := range ids {
		dto, ok := byID[id]
		if !ok {
			return nil, errs.NewObjectNotFoundError("parcel", id)
		}
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, p)
	}
	return parcels, nil
}

func (r *GormParcelRepository) List(ctx context.Context, filter ports.ParcelFilter) ([]*parcel.Parcel, error) {
	q := r.db.WithContext(ctx).Model(&ParcelDTO{})
	if filter.StationID != "" {
		q = q.Where("current_station_id = ?", filter.StationID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		q = q.Where("status IN ?", statuses)
	}
	if filter.ManifestID != nil {
		q = q.Where("manifest_id = ?", filter.ManifestID.Google())
	}

	var dtos []ParcelDTO
	if err := q.Order("updated_at DESC").Order("id").Limit(ports.EffectiveLimit(filter.Limit)).Find(&dtos).Error; err != nil {
		return nil, err
	}

	parcels := make([]*parcel.Parcel, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, p)
	}
	return parcels, nil
}
