package parcel_test

import (
	"testing"
	"time"

	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/parcel"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func clerkAt(t *testing.T, stationID string) actor.Context {
	t.Helper()
	act, err := actor.NewContext("clerk-"+stationID, stationID, "Station "+stationID, actor.RoleClerk)
	require.NoError(t, err)
	return act
}

func parcelIn(t *testing.T, status parcel.Status, stationID string) *parcel.Parcel {
	t.Helper()
	p, err := parcel.RestoreParcel(parcel.Snapshot{
		ID:                 "P1",
		TrackingID:         "TRK-0001",
		Status:             status,
		CurrentStationID:   stationID,
		CurrentStationName: "Station " + stationID,
		UpdatedAt:          now.Add(-time.Hour),
	})
	require.NoError(t, err)
	return p
}

func station(t *testing.T, id string) kernel.Station {
	t.Helper()
	s, err := kernel.NewStation(id, "Station "+id)
	require.NoError(t, err)
	return s
}
