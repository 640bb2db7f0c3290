// Package transitrepo persists vehicle trips between stations.
package transitrepo

import (
	"time"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/transit"

	"github.com/google/uuid"
)

type TransitRouteDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	FromStationID   string    `gorm:"index:idx_routes_pair,priority:1"`
	FromStationName string
	ToStationID     string `gorm:"index:idx_routes_pair,priority:2"`
	ToStationName   string
	VehicleNo       string
	DriverName      string
	Status          string    `gorm:"index"`
	CreatedAt       time.Time `gorm:"autoCreateTime:false;index"`
	DepartureAt     *time.Time
	ArrivedAt       *time.Time
}

func (TransitRouteDTO) TableName() string {
	return "transit_routes"
}

func fromDomain(r *transit.Route) TransitRouteDTO {
	s := r.Snapshot()
	return TransitRouteDTO{
		ID:              s.ID.Google(),
		FromStationID:   s.FromStationID,
		FromStationName: s.FromStationName,
		ToStationID:     s.ToStationID,
		ToStationName:   s.ToStationName,
		VehicleNo:       s.Vehicle.VehicleNo,
		DriverName:      s.Vehicle.DriverName,
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
		DepartureAt:     s.DepartureAt,
		ArrivedAt:       s.ArrivedAt,
	}
}

func toDomain(dto TransitRouteDTO) (*transit.Route, error) {
	return transit.RestoreRoute(transit.Snapshot{
		ID:              kernel.UUIDFromGoogle(dto.ID),
		FromStationID:   dto.FromStationID,
		FromStationName: dto.FromStationName,
		ToStationID:     dto.ToStationID,
		ToStationName:   dto.ToStationName,
		Vehicle:         transit.Vehicle{VehicleNo: dto.VehicleNo, DriverName: dto.DriverName},
		Status:          transit.Status(dto.Status),
		CreatedAt:       dto.CreatedAt,
		DepartureAt:     dto.DepartureAt,
		ArrivedAt:       dto.ArrivedAt,
	})
}
