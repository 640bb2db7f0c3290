// Package manifest groups sorted parcels for one outbound movement: a
// final-mile delivery route or an inter-station transfer.
//
// A manifest moves OPEN -> FINALIZED -> DISPATCHED and never back. Membership
// is fixed at creation and frozen once finalized. Only the origin station may
// change a manifest.
package manifest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/pkg/errs"
)

var ErrManifestIsNotConstructed = errors.New("Manifest must be created via NewManifest or RestoreManifest")

type Type string

const (
	Delivery Type = "DELIVERY"
	Transfer Type = "TRANSFER"
)

func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case Delivery, Transfer:
		return t, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%q is not a manifest type", s))
	}
}

type Status string

const (
	Open       Status = "OPEN"
	Finalized  Status = "FINALIZED"
	Dispatched Status = "DISPATCHED"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case Open, Finalized, Dispatched:
		return st, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a manifest status", s))
	}
}

// RouteInfo carries the type-specific destination. DELIVERY manifests need
// RouteCode, TRANSFER manifests need DestinationStationID.
type RouteInfo struct {
	RouteCode              string
	DestinationStationID   string
	DestinationStationName string
}

type Manifest struct {
	id           kernel.UUID
	typ          Type
	origin       kernel.Station
	route        RouteInfo
	status       Status
	parcelIDs    []string
	createdAt    time.Time
	finalizedAt  *time.Time
	dispatchedAt *time.Time

	isConstructed bool
}

// NewManifest opens a manifest at origin. Parcel status checks belong to the
// caller; NewManifest only validates the manifest's own fields.
func NewManifest(id kernel.UUID, typ Type, origin kernel.Station, parcelIDs []string, route RouteInfo, at time.Time) (*Manifest, error) {
	m := &Manifest{
		status:        Open,
		createdAt:     at.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		m.setID(id),
		m.setOrigin(origin),
		m.setParcelIDs(parcelIDs),
		m.setRoute(typ, route),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manifest) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	m.id = id
	return nil
}

func (m *Manifest) setOrigin(origin kernel.Station) error {
	if origin.IsZero() {
		return errs.NewValueIsRequiredError("stationId")
	}
	m.origin = origin
	return nil
}

func (m *Manifest) setParcelIDs(parcelIDs []string) error {
	if len(parcelIDs) == 0 {
		return errs.NewValueIsRequiredError("parcelIds")
	}
	seen := make(map[string]struct{}, len(parcelIDs))
	ids := make([]string, 0, len(parcelIDs))
	for _, id := range parcelIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return errs.NewValueIsRequiredError("parcelIds")
		}
		if _, dup := seen[id]; dup {
			return errs.NewValueIsInvalidErrorWithCause("parcelIds", fmt.Errorf("parcel %s listed twice", id))
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	m.parcelIDs = ids
	return nil
}

func (m *Manifest) setRoute(typ Type, route RouteInfo) error {
	route.RouteCode = strings.TrimSpace(route.RouteCode)
	route.DestinationStationID = strings.TrimSpace(route.DestinationStationID)
	route.DestinationStationName = strings.TrimSpace(route.DestinationStationName)

	switch typ {
	case Delivery:
		if route.RouteCode == "" {
			return errs.NewValueIsRequiredError("routeCode")
		}
	case Transfer:
		if route.DestinationStationID == "" {
			return errs.NewValueIsRequiredError("destinationStationId")
		}
		if route.DestinationStationID == m.origin.ID() {
			return errs.NewValueIsInvalidErrorWithCause("destinationStationId", errors.New("destination equals origin"))
		}
	default:
		return errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%q is not a manifest type", string(typ)))
	}

	m.typ = typ
	m.route = route
	return nil
}

// Finalize freezes membership. Only an OPEN manifest at the actor's station
// can be finalized.
func (m *Manifest) Finalize(actorStationID string, at time.Time) error {
	if err := m.advance(actorStationID, Open, Finalized); err != nil {
		return err
	}
	t := at.UTC()
	m.finalizedAt = &t
	return nil
}

// Dispatch records that the manifest left with its vehicle. It does not move
// the member parcels; each parcel is scanned out separately.
func (m *Manifest) Dispatch(actorStationID string, at time.Time) error {
	if err := m.advance(actorStationID, Finalized, Dispatched); err != nil {
		return err
	}
	t := at.UTC()
	m.dispatchedAt = &t
	return nil
}

func (m *Manifest) advance(actorStationID string, from, to Status) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if !m.origin.Is(actorStationID) {
		return errs.NewStationMismatchError(m.id.String(), m.origin.ID(), actorStationID)
	}
	if m.status != from {
		return errs.NewInvalidTransitionError(m.id.String(), string(m.status), "move to "+string(to))
	}
	m.status = to
	return nil
}

// Contains reports whether parcelID is a member.
func (m *Manifest) Contains(parcelID string) bool {
	for _, id := range m.parcelIDs {
		if id == parcelID {
			return true
		}
	}
	return false
}

func (m *Manifest) Validate() error {
	if m == nil || !m.isConstructed {
		return ErrManifestIsNotConstructed
	}
	return nil
}

func (m *Manifest) ID() kernel.UUID        { return m.id }
func (m *Manifest) Type() Type             { return m.typ }
func (m *Manifest) Origin() kernel.Station { return m.origin }
func (m *Manifest) Route() RouteInfo       { return m.route }
func (m *Manifest) Status() Status         { return m.status }
func (m *Manifest) CreatedAt() time.Time   { return m.createdAt }

func (m *Manifest) ParcelIDs() []string {
	out := make([]string, len(m.parcelIDs))
	copy(out, m.parcelIDs)
	return out
}

// Snapshot is the exported form used by adapters.
type Snapshot struct {
	ID           kernel.UUID
	Type         Type
	StationID    string
	StationName  string
	Route        RouteInfo
	Status       Status
	ParcelIDs    []string
	CreatedAt    time.Time
	FinalizedAt  *time.Time
	DispatchedAt *time.Time
}

func (m *Manifest) Snapshot() Snapshot {
	return Snapshot{
		ID:           m.id,
		Type:         m.typ,
		StationID:    m.origin.ID(),
		StationName:  m.origin.Name(),
		Route:        m.route,
		Status:       m.status,
		ParcelIDs:    m.ParcelIDs(),
		CreatedAt:    m.createdAt,
		FinalizedAt:  copyTime(m.finalizedAt),
		DispatchedAt: copyTime(m.dispatchedAt),
	}
}

// RestoreManifest rebuilds a manifest from storage.
func RestoreManifest(s Snapshot) (*Manifest, error) {
	origin, err := kernel.NewStation(s.StationID, s.StationName)
	if err != nil {
		return nil, err
	}
	if _, err := ParseStatus(string(s.Status)); err != nil {
		return nil, err
	}
	m, err := NewManifest(s.ID, s.Type, origin, s.ParcelIDs, s.Route, s.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.status = s.Status
	m.finalizedAt = copyTime(s.FinalizedAt)
	m.dispatchedAt = copyTime(s.DispatchedAt)
	return m, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
