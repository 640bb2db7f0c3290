package parcel

import (
	"errors"
	"strings"
	"time"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/pkg/errs"
)

var ErrParcelIsNotConstructed = errors.New("Parcel must be created via NewParcel or RestoreParcel")

// Parcel is the unit of work moving through the network. It is identified by
// its id and, for scanners, by a tracking id that may differ from it.
// Parcels are never deleted.
type Parcel struct {
	id           string
	trackingID   string
	status       Status
	station      kernel.Station
	sortBin      string
	routeCode    string
	manifestID   *kernel.UUID
	returnReason string
	updatedAt    time.Time

	isConstructed bool
}

// NewParcel books a parcel in status created at the given station.
func NewParcel(id, trackingID string, station kernel.Station, at time.Time) (*Parcel, error) {
	p := &Parcel{
		status:        Created,
		updatedAt:     at.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		p.setID(id),
		p.setTrackingID(trackingID),
		p.setStation(station),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// Snapshot is the flat, exported view of a parcel used by adapters and
// response mapping.
type Snapshot struct {
	ID                 string
	TrackingID         string
	Status             Status
	CurrentStationID   string
	CurrentStationName string
	SortBin            string
	RouteCode          string
	ManifestID         *kernel.UUID
	ReturnReason       string
	UpdatedAt          time.Time
}

// RestoreParcel rebuilds a parcel from storage.
func RestoreParcel(s Snapshot) (*Parcel, error) {
	if strings.TrimSpace(s.ID) == "" {
		return nil, errs.NewValueIsRequiredError("id")
	}
	if err := s.Status.Validate(); err != nil {
		return nil, err
	}

	var manifestID *kernel.UUID
	if s.ManifestID != nil {
		id := *s.ManifestID
		manifestID = &id
	}

	return &Parcel{
		id:            s.ID,
		trackingID:    s.TrackingID,
		status:        s.Status,
		station:       kernel.RestoreStation(s.CurrentStationID, s.CurrentStationName),
		sortBin:       s.SortBin,
		routeCode:     s.RouteCode,
		manifestID:    manifestID,
		returnReason:  s.ReturnReason,
		updatedAt:     s.UpdatedAt.UTC(),
		isConstructed: true,
	}, nil
}

func (p *Parcel) Validate() error {
	if p == nil || !p.isConstructed {
		return ErrParcelIsNotConstructed
	}
	return nil
}

func (p *Parcel) ID() string              { return p.id }
func (p *Parcel) TrackingID() string      { return p.trackingID }
func (p *Parcel) Status() Status          { return p.status }
func (p *Parcel) Station() kernel.Station { return p.station }
func (p *Parcel) SortBin() string         { return p.sortBin }
func (p *Parcel) RouteCode() string       { return p.routeCode }
func (p *Parcel) ReturnReason() string    { return p.returnReason }
func (p *Parcel) UpdatedAt() time.Time    { return p.updatedAt }
func (p *Parcel) ManifestID() *kernel.UUID {
	if p.manifestID == nil {
		return nil
	}
	id := *p.manifestID
	return &id
}

func (p *Parcel) Snapshot() Snapshot {
	return Snapshot{
		ID:                 p.id,
		TrackingID:         p.trackingID,
		Status:             p.status,
		CurrentStationID:   p.station.ID(),
		CurrentStationName: p.station.Name(),
		SortBin:            p.sortBin,
		RouteCode:          p.routeCode,
		ManifestID:         p.ManifestID(),
		ReturnReason:       p.returnReason,
		UpdatedAt:          p.updatedAt,
	}
}

// Apply writes a decision produced by Transition for this parcel. It refuses
// decisions computed against a different status, which happens when the
// parcel was reloaded between deciding and applying.
func (p *Parcel) Apply(d Decision, at time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if d.NoOp {
		return nil
	}
	if d.From != p.status {
		return errs.NewInvalidTransitionError(p.id, string(p.status), string(d.Event))
	}

	patch := d.Patch
	if patch.Station != nil {
		p.station = *patch.Station
	}
	if patch.SortBin != nil {
		p.sortBin = *patch.SortBin
	}
	if patch.RouteCode != nil {
		p.routeCode = *patch.RouteCode
	}
	if patch.ManifestID != nil {
		id := *patch.ManifestID
		p.manifestID = &id
	}
	if patch.ClearManifest {
		p.manifestID = nil
	}
	if patch.ReturnReason != nil {
		p.returnReason = *patch.ReturnReason
	}
	p.status = d.Next
	p.updatedAt = at.UTC()
	return nil
}

func (p *Parcel) setID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errs.NewValueIsRequiredError("id")
	}
	p.id = id
	return nil
}

// setTrackingID falls back to the id; booking systems often print the id itself.
func (p *Parcel) setTrackingID(trackingID string) error {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		trackingID = p.id
	}
	p.trackingID = trackingID
	return nil
}

func (p *Parcel) setStation(station kernel.Station) error {
	if station.IsZero() {
		return errs.NewValueIsRequiredError("stationId")
	}
	p.station = station
	return nil
}
