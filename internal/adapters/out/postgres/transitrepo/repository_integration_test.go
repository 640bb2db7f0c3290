package transitrepo_test

import (
	"context"
	"testing"
	"time"

	"parcelhub/internal/adapters/out/postgres/eventrepo"
	"parcelhub/internal/adapters/out/postgres/transitrepo"
	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/core/domain/model/transit"
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

type TransitRouteRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *transitrepo.GormTransitRouteRepository
	tracker    *MockAggregateTracker
	origin     actor.Context
	target     actor.Context
}

func (suite *TransitRouteRepositoryIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(&transitrepo.TransitRouteDTO{}, &eventrepo.EventDTO{}))

	suite.origin, err = actor.NewContext("dispatcher-1", "ST-A", "Station A", actor.RoleDispatcher)
	suite.Require().NoError(err)
	suite.target, err = actor.NewContext("clerk-9", "ST-B", "Station B", actor.RoleClerk)
	suite.Require().NoError(err)
}

func (suite *TransitRouteRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE transit_routes, warehouse_events RESTART IDENTITY").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = transitrepo.NewGormTransitRouteRepository(suite.db, suite.tracker)
}

func (suite *TransitRouteRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func TestTransitRouteRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(TransitRouteRepositoryIntegrationTestSuite))
}

func (suite *TransitRouteRepositoryIntegrationTestSuite) TestAdvance_StampsPersistOnce() {
	ctx := suite.T().Context()
	route := suite.addRoute("ST-B", testNow)
	suite.tracker.On("TrackAggregate", route.ID().String(), route).Twice()

	departed := testNow.Add(time.Hour)
	suite.Require().NoError(route.Advance(transit.Dispatched, "ST-A", departed))
	suite.Require().NoError(suite.repository.Update(ctx, route, suite.routeEvent(event.RouteDispatched, route, suite.origin, departed)))

	arrived := testNow.Add(3 * time.Hour)
	suite.Require().NoError(route.Advance(transit.Arrived, "ST-B", arrived))
	suite.Require().NoError(suite.repository.Update(ctx, route, suite.routeEvent(event.RouteArrived, route, suite.target, arrived)))

	got, err := suite.repository.Get(ctx, route.ID())
	suite.Require().NoError(err)
	snapshot := got.Snapshot()
	suite.Equal(transit.Arrived, snapshot.Status)
	suite.Equal("B-1234", snapshot.Vehicle.VehicleNo)
	suite.Require().NotNil(snapshot.DepartureAt)
	suite.Require().NotNil(snapshot.ArrivedAt)
	suite.True(snapshot.DepartureAt.Equal(departed))
	suite.True(snapshot.ArrivedAt.Equal(arrived))

	suite.assertEventCount(3)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *TransitRouteRepositoryIntegrationTestSuite) TestGet_NonExistentRoute_ReturnsNotFoundError() {
	got, err := suite.repository.Get(suite.T().Context(), kernel.NewUUID())

	suite.Nil(got)
	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
}

func (suite *TransitRouteRepositoryIntegrationTestSuite) TestUpdate_NonExistentRoute_ReturnsError() {
	ctx := suite.T().Context()
	route, err := transit.NewRoute(kernel.NewUUID(), suite.origin.Station(), suite.target.Station(), transit.Vehicle{}, testNow)
	suite.Require().NoError(err)

	err = suite.repository.Update(ctx, route, suite.routeEvent(event.RouteCancelled, route, suite.origin, testNow))

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.assertEventCount(0)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *TransitRouteRepositoryIntegrationTestSuite) TestList_ByPairStationAndDay() {
	ctx := suite.T().Context()
	toB := suite.addRoute("ST-B", testNow)
	toC := suite.addRoute("ST-C", testNow.Add(time.Hour))
	yesterday := suite.addRoute("ST-B", testNow.Add(-24*time.Hour))

	suite.tracker.On("TrackAggregate", toC.ID().String(), toC).Once()
	suite.Require().NoError(toC.Advance(transit.Cancelled, "ST-A", testNow.Add(2*time.Hour)))
	suite.Require().NoError(suite.repository.Update(ctx, toC, suite.routeEvent(event.RouteCancelled, toC, suite.origin, testNow.Add(2*time.Hour))))

	day := ports.RouteFilter{CreatedFrom: testNow.Truncate(24 * time.Hour), CreatedTo: testNow.Truncate(24 * time.Hour).Add(24 * time.Hour)}

	testCases := []struct {
		name     string
		filter   ports.RouteFilter
		expected []kernel.UUID
	}{
		{
			name:     "pair on a day",
			filter:   ports.RouteFilter{FromStationID: "ST-A", ToStationID: "ST-B", CreatedFrom: day.CreatedFrom, CreatedTo: day.CreatedTo},
			expected: []kernel.UUID{toB.ID()},
		},
		{
			name:     "either end, newest first",
			filter:   ports.RouteFilter{StationID: "ST-A"},
			expected: []kernel.UUID{toC.ID(), toB.ID(), yesterday.ID()},
		},
		{
			name:     "either end with status",
			filter:   ports.RouteFilter{StationID: "ST-B", Status: transit.Planned},
			expected: []kernel.UUID{toB.ID(), yesterday.ID()},
		},
		{
			name:     "status only",
			filter:   ports.RouteFilter{Status: transit.Cancelled},
			expected: []kernel.UUID{toC.ID()},
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			routes, err := suite.repository.List(ctx, tc.filter)
			suite.Require().NoError(err)

			ids := make([]kernel.UUID, 0, len(routes))
			for _, r := range routes {
				ids = append(ids, r.ID())
			}
			suite.Equal(tc.expected, ids)
		})
	}
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *TransitRouteRepositoryIntegrationTestSuite) addRoute(toStationID string, at time.Time) *transit.Route {
	route, err := transit.NewRoute(
		kernel.NewUUID(),
		suite.origin.Station(),
		kernel.RestoreStation(toStationID, ""),
		transit.Vehicle{VehicleNo: "B-1234", DriverName: "Dana"},
		at,
	)
	suite.Require().NoError(err)

	suite.tracker.On("TrackAggregate", route.ID().String(), route).Once()
	suite.Require().NoError(suite.repository.Add(suite.T().Context(), route, suite.routeEvent(event.RouteCreated, route, suite.origin, at)))
	return route
}

func (suite *TransitRouteRepositoryIntegrationTestSuite) routeEvent(typ event.Type, route *transit.Route, act actor.Context, at time.Time) *event.WarehouseEvent {
	e, err := event.NewRouteEvent(typ, route.ID(), act, at)
	suite.Require().NoError(err)
	return e
}

func (suite *TransitRouteRepositoryIntegrationTestSuite) assertEventCount(expected int64) {
	var count int64
	suite.Require().NoError(suite.db.Model(&eventrepo.EventDTO{}).Count(&count).Error)
	suite.Equal(expected, count)
}
