package transit_test

import (
	"testing"
	"time"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/transit"
	"parcelhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 7, 1, 4, 0, 0, 0, time.UTC)

func plannedRoute(t *testing.T) *transit.Route {
	t.Helper()
	r, err := transit.NewRoute(kernel.NewUUID(),
		kernel.RestoreStation("S1", "Makassar"),
		kernel.RestoreStation("S2", "Maros"),
		transit.Vehicle{VehicleNo: " DD 1234 XY ", DriverName: "Andi"}, at)
	require.NoError(t, err)
	return r
}

func TestNewRoute(t *testing.T) {
	t.Run("planned", func(t *testing.T) {
		r := plannedRoute(t)

		assert.Equal(t, transit.Planned, r.Status())
		assert.Equal(t, "DD 1234 XY", r.Vehicle().VehicleNo)
		assert.Nil(t, r.Snapshot().DepartureAt)
		assert.Nil(t, r.Snapshot().ArrivedAt)
	})

	t.Run("same station", func(t *testing.T) {
		_, err := transit.NewRoute(kernel.NewUUID(), kernel.RestoreStation("S1", ""), kernel.RestoreStation("S1", ""), transit.Vehicle{}, at)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("destination required", func(t *testing.T) {
		_, err := transit.NewRoute(kernel.NewUUID(), kernel.RestoreStation("S1", ""), kernel.Station{}, transit.Vehicle{}, at)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestRoute_Advance(t *testing.T) {
	t.Run("linear sequence stamps both timestamps once", func(t *testing.T) {
		r := plannedRoute(t)

		require.NoError(t, r.Advance(transit.Dispatched, "S1", at.Add(time.Hour)))
		require.NoError(t, r.Advance(transit.Arrived, "S2", at.Add(3*time.Hour)))

		s := r.Snapshot()
		assert.Equal(t, transit.Arrived, s.Status)
		assert.Equal(t, at.Add(time.Hour), *s.DepartureAt)
		assert.Equal(t, at.Add(3*time.Hour), *s.ArrivedAt)

		err := r.Advance(transit.Arrived, "S2", at.Add(4*time.Hour))
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, at.Add(3*time.Hour), *r.Snapshot().ArrivedAt)
	})

	testCases := []struct {
		name   string
		path   []transit.Status
		target transit.Status
		ok     bool
	}{
		{"planned to arrived", nil, transit.Arrived, false},
		{"planned to planned", nil, transit.Planned, false},
		{"planned to cancelled", nil, transit.Cancelled, true},
		{"dispatched to cancelled", []transit.Status{transit.Dispatched}, transit.Cancelled, true},
		{"dispatched to planned", []transit.Status{transit.Dispatched}, transit.Planned, false},
		{"arrived to cancelled", []transit.Status{transit.Dispatched, transit.Arrived}, transit.Cancelled, false},
		{"cancelled to dispatched", []transit.Status{transit.Cancelled}, transit.Dispatched, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := plannedRoute(t)
			for _, step := range tc.path {
				require.NoError(t, r.Advance(step, "S1", at))
			}

			err := r.Advance(tc.target, "S1", at)

			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.target, r.Status())
				return
			}
			require.ErrorIs(t, err, errs.ErrInvalidTransition)
		})
	}

	t.Run("outsider station", func(t *testing.T) {
		r := plannedRoute(t)

		err := r.Advance(transit.Dispatched, "S3", at)

		require.ErrorIs(t, err, errs.ErrStationMismatch)
		assert.Equal(t, transit.Planned, r.Status())
	})

	t.Run("unknown target", func(t *testing.T) {
		err := plannedRoute(t).Advance(transit.Status("LOST"), "S1", at)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestRestoreRoute(t *testing.T) {
	r := plannedRoute(t)
	require.NoError(t, r.Advance(transit.Dispatched, "S1", at))

	restored, err := transit.RestoreRoute(r.Snapshot())

	require.NoError(t, err)
	assert.Equal(t, r.Snapshot(), restored.Snapshot())
	assert.True(t, restored.Status().CanTransitionTo(transit.Arrived))
	assert.True(t, transit.Arrived.IsTerminal())
}
