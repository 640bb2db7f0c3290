// Package manifestrepo persists manifests with their member parcel ids.
package manifestrepo

import (
	"time"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/manifest"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ManifestDTO struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type                   string    `gorm:"index"`
	StationID              string    `gorm:"index"`
	StationName            string
	RouteCode              string
	DestinationStationID   string
	DestinationStationName string
	Status                 string         `gorm:"index"`
	ParcelIDs              pq.StringArray `gorm:"type:text[]"`
	CreatedAt              time.Time      `gorm:"autoCreateTime:false;index"`
	FinalizedAt            *time.Time
	DispatchedAt           *time.Time
}

func (ManifestDTO) TableName() string {
	return "manifests"
}

func fromDomain(m *manifest.Manifest) ManifestDTO {
	s := m.Snapshot()
	return ManifestDTO{
		ID:                     s.ID.Google(),
		Type:                   string(s.Type),
		StationID:              s.StationID,
		StationName:            s.StationName,
		RouteCode:              s.Route.RouteCode,
		DestinationStationID:   s.Route.DestinationStationID,
		DestinationStationName: s.Route.DestinationStationName,
		Status:                 string(s.Status),
		ParcelIDs:              pq.StringArray(s.ParcelIDs),
		CreatedAt:              s.CreatedAt,
		FinalizedAt:            s.FinalizedAt,
		DispatchedAt:           s.DispatchedAt,
	}
}

func toDomain(dto ManifestDTO) (*manifest.Manifest, error) {
	return manifest.RestoreManifest(manifest.Snapshot{
		ID:          kernel.UUIDFromGoogle(dto.ID),
		Type:        manifest.Type(dto.Type),
		StationID:   dto.StationID,
		StationName: dto.StationName,
		Route: manifest.RouteInfo{
			RouteCode:              dto.RouteCode,
			DestinationStationID:   dto.DestinationStationID,
			DestinationStationName: dto.DestinationStationName,
		},
		Status:       manifest.Status(dto.Status),
		ParcelIDs:    []string(dto.ParcelIDs),
		CreatedAt:    dto.CreatedAt,
		FinalizedAt:  dto.FinalizedAt,
		DispatchedAt: dto.DispatchedAt,
	})
}
