// Package ports defines the contracts between the parcel engine and its
// storage, change notification and publishing adapters.
package ports

import (
	"context"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/parcel"
)

// ParcelFilter selects parcels for listings and subscriptions. Zero fields
// do not filter.
type ParcelFilter struct {
	StationID  string
	Statuses   []parcel.Status
	ManifestID *kernel.UUID
	// Limit caps the result; zero means DefaultListLimit.
	Limit int
}

const (
	DefaultListLimit = 200
	MaxListLimit     = 1000
)

// EffectiveLimit clamps Limit into (0, MaxListLimit].
func EffectiveLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// Matches reports whether s passes the filter. Adapters without a query
// language (memory store, change feed fan-out) use it directly.
func (f ParcelFilter) Matches(s parcel.Snapshot) bool {
	if f.StationID != "" && s.CurrentStationID != f.StationID {
		return false
	}
	if f.ManifestID != nil && (s.ManifestID == nil || !s.ManifestID.IsEqual(*f.ManifestID)) {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, st := range f.Statuses {
		if s.Status == st {
			return true
		}
	}
	return false
}

// ParcelRepository persists parcels. Every write takes the warehouse event
// describing it, and the adapter appends that event in the same unit of
// work, so a mutation without its audit record cannot be expressed.
type ParcelRepository interface {
	// Add stores a newly booked parcel.
	Add(ctx context.Context, p *parcel.Parcel, e *event.WarehouseEvent) error

	// Update overwrites an existing parcel. Last committer wins.
	Update(ctx context.Context, p *parcel.Parcel, e *event.WarehouseEvent) error

	// Get is the point read by primary key.
	Get(ctx context.Context, id string) (*parcel.Parcel, error)

	// FindByTrackingID returns the first parcel carrying trackingID.
	FindByTrackingID(ctx context.Context, trackingID string) (*parcel.Parcel, error)

	// GetMany returns the parcels in the order of ids. A missing id is a
	// NotFound error for the whole call.
	GetMany(ctx context.Context, ids []string) ([]*parcel.Parcel, error)

	// List returns parcels matching filter ordered by most recent update.
	List(ctx context.Context, filter ParcelFilter) ([]*parcel.Parcel, error)
}
