package http

import (
	"time"

	"parcelhub/internal/core/application/lookup"
	"parcelhub/internal/core/application/usecases/queries"
	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/manifest"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/domain/model/transit"
)

type RegisterParcelRequest struct {
	ParcelID   string `json:"parcelId" validate:"required"`
	TrackingID string `json:"trackingId" validate:"required"`
}

type ScanOutRequest struct {
	Mode string `json:"mode" validate:"required,oneof=delivery transfer"`
}

type ReasonRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type OptionalReasonRequest struct {
	Reason string `json:"reason"`
}

type BulkSortRequest struct {
	ParcelIDs []string `json:"parcelIds" validate:"required,min=1,max=500,dive,required"`
	SortBin   string   `json:"sortBin" validate:"required"`
	RouteCode string   `json:"routeCode" validate:"required"`
}

// CreateManifestRequest carries routeCode for DELIVERY manifests and the
// destination station for TRANSFER manifests; the domain checks which is
// required.
type CreateManifestRequest struct {
	Type                   string   `json:"type" validate:"required,oneof=DELIVERY TRANSFER"`
	ParcelIDs              []string `json:"parcelIds" validate:"required,min=1,max=500,dive,required"`
	RouteCode              string   `json:"routeCode"`
	DestinationStationID   string   `json:"destinationStationId"`
	DestinationStationName string   `json:"destinationStationName"`
}

type CreateTransitRouteRequest struct {
	ToStationID   string `json:"toStationId" validate:"required"`
	ToStationName string `json:"toStationName"`
	VehicleNo     string `json:"vehicleNo"`
	DriverName    string `json:"driverName"`
}

type AdvanceTransitRouteRequest struct {
	Status string `json:"status" validate:"required,oneof=DISPATCHED ARRIVED CANCELLED"`
}

type Parcel struct {
	ID           string    `json:"id"`
	TrackingID   string    `json:"trackingId"`
	Status       string    `json:"status"`
	StationID    string    `json:"stationId"`
	StationName  string    `json:"stationName,omitempty"`
	SortBin      string    `json:"sortBin,omitempty"`
	RouteCode    string    `json:"routeCode,omitempty"`
	ManifestID   string    `json:"manifestId,omitempty"`
	ReturnReason string    `json:"returnReason,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ScanResult struct {
	Parcel     Parcel `json:"parcel"`
	LookupPath string `json:"lookupPath"`
	Changed    bool   `json:"changed"`
}

type ParcelLookup struct {
	Parcel     Parcel `json:"parcel"`
	LookupPath string `json:"lookupPath"`
}

type BulkSortResult struct {
	Updated int      `json:"updated"`
	Parcels []Parcel `json:"parcels"`
}

type WarehouseEvent struct {
	ID          string    `json:"id"`
	Sequence    int64     `json:"sequence"`
	Type        string    `json:"type"`
	StationID   string    `json:"stationId"`
	StationName string    `json:"stationName,omitempty"`
	ParcelID    string    `json:"parcelId,omitempty"`
	TrackingID  string    `json:"trackingId,omitempty"`
	ActorID     string    `json:"actorId"`
	Reason      string    `json:"reason,omitempty"`
	ReferenceID string    `json:"referenceId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ParcelHistory struct {
	Parcel Parcel           `json:"parcel"`
	Events []WarehouseEvent `json:"events"`
}

type ReplayVerification struct {
	ParcelID   string `json:"parcelId"`
	Stored     string `json:"stored"`
	Replayed   string `json:"replayed,omitempty"`
	Events     int    `json:"events"`
	Consistent bool   `json:"consistent"`
	Problem    string `json:"problem,omitempty"`
}

type Manifest struct {
	ID                     string     `json:"id"`
	Type                   string     `json:"type"`
	StationID              string     `json:"stationId"`
	StationName            string     `json:"stationName,omitempty"`
	RouteCode              string     `json:"routeCode,omitempty"`
	DestinationStationID   string     `json:"destinationStationId,omitempty"`
	DestinationStationName string     `json:"destinationStationName,omitempty"`
	Status                 string     `json:"status"`
	ParcelIDs              []string   `json:"parcelIds"`
	CreatedAt              time.Time  `json:"createdAt"`
	FinalizedAt            *time.Time `json:"finalizedAt,omitempty"`
	DispatchedAt           *time.Time `json:"dispatchedAt,omitempty"`
}

type TransitRoute struct {
	ID              string     `json:"id"`
	FromStationID   string     `json:"fromStationId"`
	FromStationName string     `json:"fromStationName,omitempty"`
	ToStationID     string     `json:"toStationId"`
	ToStationName   string     `json:"toStationName,omitempty"`
	VehicleNo       string     `json:"vehicleNo,omitempty"`
	DriverName      string     `json:"driverName,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	DepartureAt     *time.Time `json:"departureAt,omitempty"`
	ArrivedAt       *time.Time `json:"arrivedAt,omitempty"`
}

func toParcel(s parcel.Snapshot) Parcel {
	out := Parcel{
		ID:           s.ID,
		TrackingID:   s.TrackingID,
		Status:       string(s.Status),
		StationID:    s.CurrentStationID,
		StationName:  s.CurrentStationName,
		SortBin:      s.SortBin,
		RouteCode:    s.RouteCode,
		ReturnReason: s.ReturnReason,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.ManifestID != nil {
		out.ManifestID = s.ManifestID.String()
	}
	return out
}

func toParcels(snapshots []parcel.Snapshot) []Parcel {
	out := make([]Parcel, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, toParcel(s))
	}
	return out
}

func toScanResult(s parcel.Snapshot, path lookup.Path, changed bool) ScanResult {
	return ScanResult{Parcel: toParcel(s), LookupPath: string(path), Changed: changed}
}

func toEvent(s event.Snapshot) WarehouseEvent {
	out := WarehouseEvent{
		ID:          s.ID.String(),
		Sequence:    s.Sequence,
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
		out.ReferenceID = s.ReferenceID.String()
	}
	return out
}

func toHistory(h queries.ParcelHistoryQueryResponse) ParcelHistory {
	events := make([]WarehouseEvent, 0, len(h.Events))
	for _, e := range h.Events {
		events = append(events, toEvent(e))
	}
	return ParcelHistory{Parcel: toParcel(h.Parcel), Events: events}
}

func toVerification(v queries.ReplayVerification) ReplayVerification {
	return ReplayVerification{
		ParcelID:   v.ParcelID,
		Stored:     string(v.Stored),
		Replayed:   string(v.Replayed),
		Events:     v.Events,
		Consistent: v.Consistent,
		Problem:    v.Problem,
	}
}

func toManifest(s manifest.Snapshot) Manifest {
	return Manifest{
		ID:                     s.ID.String(),
		Type:                   string(s.Type),
		StationID:              s.StationID,
		StationName:            s.StationName,
		RouteCode:              s.Route.RouteCode,
		DestinationStationID:   s.Route.DestinationStationID,
		DestinationStationName: s.Route.DestinationStationName,
		Status:                 string(s.Status),
		ParcelIDs:              s.ParcelIDs,
		CreatedAt:              s.CreatedAt,
		FinalizedAt:            s.FinalizedAt,
		DispatchedAt:           s.DispatchedAt,
	}
}

func toTransitRoute(s transit.Snapshot) TransitRoute {
	return TransitRoute{
		ID:              s.ID.String(),
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
