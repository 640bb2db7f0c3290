package kernel

import (
	"strings"

	"parcelhub/internal/pkg/errs"
)

// Station is the warehouse or hub holding physical custody of a parcel.
// Identity is the id; the name travels along for display and audit.
type Station struct {
	id   string
	name string
}

func NewStation(id, name string) (Station, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Station{}, errs.NewValueIsRequiredError("stationId")
	}
	return Station{id: id, name: strings.TrimSpace(name)}, nil
}

// RestoreStation rebuilds a station from storage without validation; an empty
// id is allowed for parcels that have never been scanned in.
func RestoreStation(id, name string) Station {
	return Station{id: id, name: name}
}

func (s Station) ID() string   { return s.id }
func (s Station) Name() string { return s.name }

func (s Station) IsZero() bool {
	return s.id == ""
}

// Is compares by id only.
func (s Station) Is(stationID string) bool {
	return s.id != "" && s.id == stationID
}

func (s Station) String() string {
	if s.name == "" {
		return s.id
	}
	return s.id + " (" + s.name + ")"
}
