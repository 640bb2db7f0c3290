package commands_test

import (
	"context"
	"testing"
	"time"

	"parcelhub/internal/adapters/out/memory"
	"parcelhub/internal/core/application/usecases/commands"
	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 2, 7, 45, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func clerkAt(t *testing.T, stationID string) actor.Context {
	t.Helper()
	act, err := actor.NewContext("clerk-"+stationID, stationID, "Station "+stationID, actor.RoleClerk)
	require.NoError(t, err)
	return act
}

func stored(t *testing.T, id string, status parcel.Status, stationID string) *parcel.Parcel {
	t.Helper()
	p, err := parcel.RestoreParcel(parcel.Snapshot{
		ID:               id,
		TrackingID:       "TRK-" + id,
		Status:           status,
		CurrentStationID: stationID,
		UpdatedAt:        fixedNow.Add(-time.Hour),
	})
	require.NoError(t, err)
	return p
}

type MockParcelRepository struct{ mock.Mock }

func (m *MockParcelRepository) Add(ctx context.Context, p *parcel.Parcel, e *event.WarehouseEvent) error {
	args := m.Called(ctx, p, e)
	return args.Error(0)
}

func (m *MockParcelRepository) Update(ctx context.Context, p *parcel.Parcel, e *event.WarehouseEvent) error {
	args := m.Called(ctx, p, e)
	return args.Error(0)
}

func (m *MockParcelRepository) Get(ctx context.Context, id string) (*parcel.Parcel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*parcel.Parcel), args.Error(1)
}

func (m *MockParcelRepository) FindByTrackingID(ctx context.Context, trackingID string) (*parcel.Parcel, error) {
	args := m.Called(ctx, trackingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*parcel.Parcel), args.Error(1)
}

func (m *MockParcelRepository) GetMany(ctx context.Context, ids []string) ([]*parcel.Parcel, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*parcel.Parcel), args.Error(1)
}

func (m *MockParcelRepository) List(ctx context.Context, filter ports.ParcelFilter) ([]*parcel.Parcel, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*parcel.Parcel), args.Error(1)
}

type MockParcelUoW struct{ mock.Mock }

func (m *MockParcelUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockParcelUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockParcelUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockParcelUoW) ParcelRepository() ports.ParcelRepository {
	args := m.Called()
	return args.Get(0).(ports.ParcelRepository)
}

type MockParcelUoWFactory struct{ mock.Mock }

func (m *MockParcelUoWFactory) Create() commands.ParcelUoW {
	args := m.Called()
	return args.Get(0).(commands.ParcelUoW)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, events []*event.WarehouseEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// Factories over the memory store, one per unit of work shape.

type parcelUoWs struct{ f *memory.UnitOfWorkFactory }

func (p parcelUoWs) Create() commands.ParcelUoW { return p.f.Create() }

type manifestUoWs struct{ f *memory.UnitOfWorkFactory }

func (m manifestUoWs) Create() commands.ManifestUoW { return m.f.Create() }

type routeUoWs struct{ f *memory.UnitOfWorkFactory }

func (r routeUoWs) Create() commands.TransitRouteUoW { return r.f.Create() }

type relayUoWs struct{ f *memory.UnitOfWorkFactory }

func (r relayUoWs) Create() commands.RelayUoW { return r.f.Create() }
