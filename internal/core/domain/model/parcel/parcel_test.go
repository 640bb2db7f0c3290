package parcel_test

import (
	"testing"
	"time"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParcel(t *testing.T) {
	t.Run("booked as created", func(t *testing.T) {
		p, err := parcel.NewParcel("P1", "TRK-1", station(t, "S1"), now)

		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.Equal(t, parcel.Created, p.Status())
		assert.Equal(t, "TRK-1", p.TrackingID())
		assert.Equal(t, "S1", p.Station().ID())
		assert.Nil(t, p.ManifestID())
		assert.Equal(t, now, p.UpdatedAt())
	})

	t.Run("tracking id falls back to id", func(t *testing.T) {
		p, err := parcel.NewParcel("P1", "", station(t, "S1"), now)

		require.NoError(t, err)
		assert.Equal(t, "P1", p.TrackingID())
	})

	t.Run("id and station required", func(t *testing.T) {
		_, err := parcel.NewParcel(" ", "TRK-1", kernel.Station{}, now)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "id")
		assert.Contains(t, err.Error(), "stationId")
	})
}

func TestRestoreParcel(t *testing.T) {
	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := parcel.RestoreParcel(parcel.Snapshot{ID: "P1", Status: "lost"})

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("snapshot round trip", func(t *testing.T) {
		manifestID := kernel.NewUUID()
		in := parcel.Snapshot{
			ID:                 "P1",
			TrackingID:         "TRK-1",
			Status:             parcel.Manifested,
			CurrentStationID:   "S1",
			CurrentStationName: "Station S1",
			SortBin:            "A",
			RouteCode:          "R1",
			ManifestID:         &manifestID,
			UpdatedAt:          now,
		}

		p, err := parcel.RestoreParcel(in)

		require.NoError(t, err)
		assert.Equal(t, in, p.Snapshot())
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var p parcel.Parcel
		require.ErrorIs(t, p.Validate(), parcel.ErrParcelIsNotConstructed)
	})
}

func TestParcel_Apply(t *testing.T) {
	t.Run("sort stamps bin and route", func(t *testing.T) {
		p := parcelIn(t, parcel.InboundReceived, "S1")
		d, err := parcel.Transition(p, parcel.Sort, parcel.Input{SortBin: " A ", RouteCode: "R1"}, clerkAt(t, "S1"))
		require.NoError(t, err)

		require.NoError(t, p.Apply(d, now))

		assert.Equal(t, parcel.Sorted, p.Status())
		assert.Equal(t, "A", p.SortBin())
		assert.Equal(t, "R1", p.RouteCode())
		assert.Equal(t, now, p.UpdatedAt())
	})

	t.Run("cancel clears manifest", func(t *testing.T) {
		p := parcelIn(t, parcel.Sorted, "S1")
		manifestID := kernel.NewUUID()
		d, err := parcel.Transition(p, parcel.AddToManifest, parcel.Input{ManifestID: manifestID}, clerkAt(t, "S1"))
		require.NoError(t, err)
		require.NoError(t, p.Apply(d, now))
		require.NotNil(t, p.ManifestID())
		assert.True(t, manifestID.IsEqual(*p.ManifestID()))

		d, err = parcel.Transition(p, parcel.Cancel, parcel.Input{Reason: "duplicate booking"}, clerkAt(t, "S1"))
		require.NoError(t, err)
		require.NoError(t, p.Apply(d, now.Add(time.Minute)))

		assert.Equal(t, parcel.Cancelled, p.Status())
		assert.Nil(t, p.ManifestID())
	})

	t.Run("no-op leaves parcel untouched", func(t *testing.T) {
		p := parcelIn(t, parcel.InboundReceived, "S1")
		before := p.Snapshot()
		d, err := parcel.Transition(p, parcel.ScanIn, parcel.Input{}, clerkAt(t, "S1"))
		require.NoError(t, err)

		require.NoError(t, p.Apply(d, now))

		assert.Equal(t, before, p.Snapshot())
	})

	t.Run("stale decision", func(t *testing.T) {
		p := parcelIn(t, parcel.InboundReceived, "S1")
		d, err := parcel.Transition(p, parcel.BeginSort, parcel.Input{}, clerkAt(t, "S1"))
		require.NoError(t, err)
		require.NoError(t, p.Apply(d, now))

		err = p.Apply(d, now)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("receive return records reason and custody", func(t *testing.T) {
		p := parcelIn(t, parcel.OutForDelivery, "S1")
		d, err := parcel.Transition(p, parcel.ReceiveReturn, parcel.Input{Reason: "damaged"}, clerkAt(t, "S3"))
		require.NoError(t, err)

		require.NoError(t, p.Apply(d, now))

		assert.Equal(t, parcel.ReturnReceived, p.Status())
		assert.Equal(t, "damaged", p.ReturnReason())
		assert.Equal(t, "S3", p.Station().ID())
	})
}
