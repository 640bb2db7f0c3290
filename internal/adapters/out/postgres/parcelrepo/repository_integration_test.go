package parcelrepo_test

import (
	"context"
	"testing"
	"time"

	"parcelhub/internal/adapters/out/postgres/eventrepo"
	"parcelhub/internal/adapters/out/postgres/parcelrepo"
	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id string, aggregate any) {
	m.Called(id, aggregate)
}

// ParcelRepositoryIntegrationTestSuite runs GormParcelRepository against a
// PostgreSQL container without a unit of work around it.
type ParcelRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *parcelrepo.GormParcelRepository
	tracker    *MockAggregateTracker
	clerk      actor.Context
}

func (suite *ParcelRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&parcelrepo.ParcelDTO{}, &eventrepo.EventDTO{}))

	clerk, err := actor.NewContext("clerk-1", "ST-A", "Station A", actor.RoleClerk)
	suite.Require().NoError(err)
	suite.clerk = clerk
}

func (suite *ParcelRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE parcels, warehouse_events RESTART IDENTITY").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = parcelrepo.NewGormParcelRepository(suite.db, suite.tracker)
}

func (suite *ParcelRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func TestParcelRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ParcelRepositoryIntegrationTestSuite))
}

func (suite *ParcelRepositoryIntegrationTestSuite) TestAdd_ValidParcel_Success() {
	ctx := suite.T().Context()
	p, registered := suite.createTestParcel("P-1", testNow)

	suite.tracker.On("TrackAggregate", "P-1", p).Once()

	suite.Require().NoError(suite.repository.Add(ctx, p, registered))

	suite.assertCount("parcels", 1)
	suite.assertCount("warehouse_events", 1)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *ParcelRepositoryIntegrationTestSuite) TestAdd_DuplicateParcel_ReturnsBatchConflict() {
	ctx := suite.T().Context()
	p, registered := suite.createTestParcel("P-1", testNow)
	suite.tracker.On("TrackAggregate", "P-1", p).Once()
	suite.Require().NoError(suite.repository.Add(ctx, p, registered))

	again, registeredAgain := suite.createTestParcel("P-1", testNow)
	err := suite.repository.Add(ctx, again, registeredAgain)

	suite.Require().ErrorIs(err, errs.ErrBatchConflict)
	suite.assertCount("parcels", 1)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *ParcelRepositoryIntegrationTestSuite) TestAdd_EventWithoutID_ReturnsError() {
	ctx := suite.T().Context()
	p, _ := suite.createTestParcel("P-1", testNow)

	err := suite.repository.Add(ctx, p, &event.WarehouseEvent{})

	suite.Require().Error(err)
	suite.assertCount("parcels", 0)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *ParcelRepositoryIntegrationTestSuite) TestGet_ExistingParcel_RoundTripsFields() {
	ctx := suite.T().Context()
	p, registered := suite.createTestParcel("P-1", testNow)
	suite.tracker.On("TrackAggregate", "P-1", p).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, p, registered))

	manifestID := kernel.NewUUID()
	for _, step := range []struct {
		ev parcel.Event
		in parcel.Input
	}{
		{ev: parcel.ScanIn},
		{ev: parcel.Sort, in: parcel.Input{SortBin: "B-07", RouteCode: "R-12"}},
		{ev: parcel.AddToManifest, in: parcel.Input{ManifestID: manifestID}},
	} {
		d, err := parcel.Transition(p, step.ev, step.in, suite.clerk)
		suite.Require().NoError(err)
		suite.Require().NoError(p.Apply(d, testNow.Add(time.Minute)))
	}
	e, err := event.NewParcelEvent(p, parcel.AddToManifest, suite.clerk, "", &manifestID, testNow.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, p, e))

	got, err := suite.repository.Get(ctx, "P-1")
	suite.Require().NoError(err)

	suite.Equal(parcel.Manifested, got.Status())
	suite.Equal("TRK-P-1", got.TrackingID())
	suite.Equal("Station A", got.Station().Name())
	suite.Equal("B-07", got.SortBin())
	suite.Equal("R-12", got.RouteCode())
	suite.True(got.UpdatedAt().Equal(testNow.Add(time.Minute)))
	suite.Require().NotNil(got.ManifestID())
	suite.Equal(manifestID, *got.ManifestID())
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *ParcelRepositoryIntegrationTestSuite) TestGet_NonExistentParcel_ReturnsNotFoundError() {
	ctx := suite.T().Context()

	got, err := suite.repository.Get(ctx, "missing")
	suite.Nil(got)
	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)

	got, err = suite.repository.FindByTrackingID(ctx, "missing")
	suite.Nil(got)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *ParcelRepositoryIntegrationTestSuite) TestUpdate_NonExistentParcel_ReturnsError() {
	ctx := suite.T().Context()
	p, _ := suite.createTestParcel("P-404", testNow)
	e, err := event.NewParcelEvent(p, parcel.Cancel, suite.clerk, "", nil, testNow)
	suite.Require().NoError(err)

	err = suite.repository.Update(ctx, p, e)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.assertCount("warehouse_events", 0)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *ParcelRepositoryIntegrationTestSuite) TestGetMany_KeepsRequestedOrder() {
	ctx := suite.T().Context()
	for _, id := range []string{"P-1", "P-2", "P-3"} {
		p, registered := suite.createTestParcel(id, testNow)
		suite.tracker.On("TrackAggregate", id, p).Once()
		suite.Require().NoError(suite.repository.Add(ctx, p, registered))
	}

	parcels, err := suite.repository.GetMany(ctx, []string{"P-3", "P-1"})
	suite.Require().NoError(err)
	suite.Require().Len(parcels, 2)
	suite.Equal("P-3", parcels[0].ID())
	suite.Equal("P-1", parcels[1].ID())

	_, err = suite.repository.GetMany(ctx, []string{"P-1", "P-9"})
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *ParcelRepositoryIntegrationTestSuite) TestList_FiltersByStationAndStatus() {
	ctx := suite.T().Context()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	older, registered := suite.createTestParcel("P-1", testNow)
	suite.Require().NoError(suite.repository.Add(ctx, older, registered))
	newer, registered := suite.createTestParcel("P-2", testNow.Add(time.Hour))
	suite.Require().NoError(suite.repository.Add(ctx, newer, registered))

	elsewhere, err := parcel.NewParcel("P-3", "TRK-P-3", kernel.RestoreStation("ST-B", "Station B"), testNow)
	suite.Require().NoError(err)
	other, err := actor.NewContext("clerk-2", "ST-B", "", actor.RoleClerk)
	suite.Require().NoError(err)
	e, err := event.NewParcelEvent(elsewhere, parcel.Registered, other, "", nil, testNow)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, elsewhere, e))

	atA, err := suite.repository.List(ctx, ports.ParcelFilter{StationID: "ST-A"})
	suite.Require().NoError(err)
	suite.Require().Len(atA, 2)
	suite.Equal("P-2", atA[0].ID(), "most recently updated first")

	received, err := suite.repository.List(ctx, ports.ParcelFilter{StationID: "ST-A", Statuses: []parcel.Status{parcel.InboundReceived}})
	suite.Require().NoError(err)
	suite.Empty(received)

	limited, err := suite.repository.List(ctx, ports.ParcelFilter{Limit: 1})
	suite.Require().NoError(err)
	suite.Len(limited, 1)
}

func (suite *ParcelRepositoryIntegrationTestSuite) createTestParcel(id string, at time.Time) (*parcel.Parcel, *event.WarehouseEvent) {
	p, err := parcel.NewParcel(id, "TRK-"+id, suite.clerk.Station(), at)
	suite.Require().NoError(err)
	e, err := event.NewParcelEvent(p, parcel.Registered, suite.clerk, "", nil, at)
	suite.Require().NoError(err)
	return p, e
}

func (suite *ParcelRepositoryIntegrationTestSuite) assertCount(table string, expected int64) {
	var count int64
	suite.Require().NoError(suite.db.Table(table).Count(&count).Error)
	suite.Equal(expected, count)
}
