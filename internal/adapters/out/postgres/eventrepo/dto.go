// Package eventrepo stores the warehouse log and the relay cursors. The log
// is insert-only. Sequence is a database identity, and appending
// transactions hold a shared advisory lock until they end, so committed
// sequences never appear behind a relay cursor.
package eventrepo

import (
	"time"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

type EventDTO struct {
	Sequence    int64     `gorm:"primaryKey;autoIncrement"`
	ID          uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Type        string    `gorm:"index"`
	StationID   string    `gorm:"index"`
	StationName string
	ParcelID    string `gorm:"index"`
	TrackingID  string
	ActorID     string
	Reason      string
	ReferenceID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time  `gorm:"autoCreateTime:false"`
}

func (EventDTO) TableName() string {
	return "warehouse_events"
}

type RelayCursorDTO struct {
	Relay    string `gorm:"primaryKey"`
	Sequence int64
}

func (RelayCursorDTO) TableName() string {
	return "event_relay_cursor"
}

func fromDomain(e *event.WarehouseEvent) EventDTO {
	s := e.Snapshot()
	dto := EventDTO{
		Sequence:    s.Sequence,
		ID:          s.ID.Google(),
		Type:        string(s.Type),
		StationID:   s.StationID,
		StationName: s.StationName,
		ParcelID:    s.ParcelID,
		TrackingID:  s.TrackingID,
		ActorID:     s.ActorID,
		Reason:      s.Reason,
		CreatedAt:   s.CreatedAt,
	}
	if s.ReferenceID != nil {
		ref := s.ReferenceID.Google()
		dto.ReferenceID = &ref
	}
	return dto
}

func toDomain(dto EventDTO) (*event.WarehouseEvent, error) {
	s := event.Snapshot{
		ID:          kernel.UUIDFromGoogle(dto.ID),
		Sequence:    dto.Sequence,
		Type:        event.Type(dto.Type),
		StationID:   dto.StationID,
		StationName: dto.StationName,
		ParcelID:    dto.ParcelID,
		TrackingID:  dto.TrackingID,
		ActorID:     dto.ActorID,
		Reason:      dto.Reason,
		CreatedAt:   dto.CreatedAt,
	}
	if dto.ReferenceID != nil {
		ref := kernel.UUIDFromGoogle(*dto.ReferenceID)
		s.ReferenceID = &ref
	}
	return event.Restore(s)
}
