package transitrepo

import (
	"context"
	"errors"

	"parcelhub/internal/adapters/out/postgres/dberrs"
	"parcelhub/internal/adapters/out/postgres/eventrepo"
	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/transit"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"

	"gorm.io/gorm"
)

type aggregateTracker interface {
	TrackAggregate(id string, aggregate any)
}

type GormTransitRouteRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

var _ ports.TransitRouteRepository = (*GormTransitRouteRepository)(nil)

func NewGormTransitRouteRepository(db *gorm.DB, tracker aggregateTracker) *GormTransitRouteRepository {
	return &GormTransitRouteRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormTransitRouteRepository) Add(ctx context.Context, aggregate *transit.Route, e *event.WarehouseEvent) error {
	if err := errors.Join(aggregate.Validate(), e.Validate()); err != nil {
		return err
	}

	if err := eventrepo.LockLog(ctx, r.db); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return dberrs.Translate("insert route", err)
	}
	if _, err := eventrepo.NewGormEventRepository(r.db).Append(ctx, e); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID().String(), aggregate)
	return nil
}

func (r *GormTransitRouteRepository) Update(ctx context.Context, aggregate *transit.Route, e *event.WarehouseEvent) error {
	if err := errors.Join(aggregate.Validate(), e.Validate()); err != nil {
		return err
	}

	if err := eventrepo.LockLog(ctx, r.db); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&TransitRouteDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return dberrs.Translate("update route", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundErrorWithCause("route", aggregate.ID().String(), gorm.ErrRecordNotFound)
	}
	if _, err := eventrepo.NewGormEventRepository(r.db).Append(ctx, e); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID().String(), aggregate)
	return nil
}

func (r *GormTransitRouteRepository) Get(ctx context.Context, id kernel.UUID) (*transit.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto TransitRouteDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("route", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormTransitRouteRepository) List(ctx context.Context, filter ports.RouteFilter) ([]*transit.Route, error) {
	q := r.db.WithContext(ctx).Model(&TransitRouteDTO{})
	if filter.FromStationID != "" {
		q = q.Where("from_station_id = ?", filter.FromStationID)
	}
	if filter.ToStationID != "" {
		q = q.Where("to_station_id = ?", filter.ToStationID)
	}
	if filter.StationID != "" {
		q = q.Where("from_station_id = ? OR to_station_id = ?", filter.StationID, filter.StationID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if !filter.CreatedFrom.IsZero() {
		q = q.Where("created_at >= ?", filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		q = q.Where("created_at < ?", filter.CreatedTo)
	}

	var dtos []TransitRouteDTO
	if err := q.Order("created_at DESC").Limit(ports.EffectiveLimit(filter.Limit)).Find(&dtos).Error; err != nil {
		return nil, err
	}

	routes := make([]*transit.Route, 0, len(dtos))
	for _, dto := range dtos {
		route, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}
