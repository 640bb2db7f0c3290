// Package parcelrepo persists parcels. Every write inserts the parcel's
// warehouse event in the same statement batch, so a parcel row never changes
// without its audit record.
package parcelrepo

import (
	"time"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/parcel"

	"github.com/google/uuid"
)

type ParcelDTO struct {
	ID                 string `gorm:"primaryKey"`
	TrackingID         string `gorm:"index"`
	Status             string `gorm:"index:idx_parcels_station_status,priority:2"`
	CurrentStationID   string `gorm:"index:idx_parcels_station_status,priority:1"`
	CurrentStationName string
	SortBin            string
	RouteCode          string
	ManifestID         *uuid.UUID `gorm:"type:uuid;index"`
	ReturnReason       string
	UpdatedAt          time.Time `gorm:"autoUpdateTime:false;index"`
}

func (ParcelDTO) TableName() string {
	return "parcels"
}

func fromDomain(p *parcel.Parcel) ParcelDTO {
	s := p.Snapshot()
	dto := ParcelDTO{
		ID:                 s.ID,
		TrackingID:         s.TrackingID,
		Status:             string(s.Status),
		CurrentStationID:   s.CurrentStationID,
		CurrentStationName: s.CurrentStationName,
		SortBin:            s.SortBin,
		RouteCode:          s.RouteCode,
		ReturnReason:       s.ReturnReason,
		UpdatedAt:          s.UpdatedAt,
	}
	if s.ManifestID != nil {
		id := s.ManifestID.Google()
		dto.ManifestID = &id
	}
	return dto
}

func toDomain(dto ParcelDTO) (*parcel.Parcel, error) {
	s := parcel.Snapshot{
		ID:                 dto.ID,
		TrackingID:         dto.TrackingID,
		Status:             parcel.Status(dto.Status),
		CurrentStationID:   dto.CurrentStationID,
		CurrentStationName: dto.CurrentStationName,
		SortBin:            dto.SortBin,
		RouteCode:          dto.RouteCode,
		ReturnReason:       dto.ReturnReason,
		UpdatedAt:          dto.UpdatedAt,
	}
	if dto.ManifestID != nil {
		id := kernel.UUIDFromGoogle(*dto.ManifestID)
		s.ManifestID = &id
	}
	return parcel.RestoreParcel(s)
}
