package http

import (
	"log/slog"
	"net/http"
	"time"

	"parcelhub/internal/core/application/usecases/commands"
	"parcelhub/internal/core/application/usecases/queries"
	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/manifest"
	"parcelhub/internal/core/domain/model/transit"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const defaultKeepAlive = 15 * time.Second

// CommandHandlers groups the write side of the API.
type CommandHandlers struct {
	RegisterParcel commands.RegisterParcelCommandHandler
	ParcelEvent    commands.ParcelEventCommandHandler
	ScanOut        commands.ScanOutCommandHandler
	BulkSort       commands.BulkSortCommandHandler
	CreateManifest commands.CreateManifestCommandHandler
	ManifestStatus commands.ManifestStatusCommandHandler
	TransitRoute   commands.TransitRouteCommandHandler
}

// QueryHandlers groups the read side of the API.
type QueryHandlers struct {
	GetParcel      queries.GetParcelQueryHandler
	ParcelHistory  queries.ParcelHistoryQueryHandler
	StationParcels queries.ListStationParcelsQueryHandler
	Manifests      queries.ManifestQueryHandler
	TransitRoutes  queries.TransitRouteQueryHandler
}

// Server implements ServerInterface on top of the application use cases.
type Server struct {
	commands  CommandHandlers
	queries   QueryHandlers
	feed      ports.ChangeFeed
	metrics   *metrics.Metrics
	logger    *slog.Logger
	keepAlive time.Duration
}

func NewServer(
	commandHandlers CommandHandlers,
	queryHandlers QueryHandlers,
	feed ports.ChangeFeed,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Server {
	return &Server{
		commands:  commandHandlers,
		queries:   queryHandlers,
		feed:      feed,
		metrics:   m,
		logger:    logger.With("component", "http_server"),
		keepAlive: defaultKeepAlive,
	}
}

var _ ServerInterface = (*Server)(nil)

// RegisterParcel handles POST /api/v1/parcels.
func (s *Server) RegisterParcel(ctx echo.Context) error {
	act, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	var body RegisterParcelRequest
	if err := bindBody(ctx, &body); err != nil {
		return err
	}

	cmd, err := commands.NewRegisterParcelCommand(act, body.ParcelID, body.TrackingID)
	if err != nil {
		return err
	}
	snapshot, err := s.commands.RegisterParcel.Handle(ctx.Request().Context(), cmd)
	s.metrics.Observe("register", err)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, toParcel(snapshot))
}

// GetParcel handles GET /api/v1/parcels/{code}.
func (s *Server) GetParcel(ctx echo.Context, code string) error {
	query, err := queries.NewGetParcelQuery(code)
	if err != nil {
		return err
	}
	found, err := s.queries.GetParcel.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ParcelLookup{Parcel: toParcel(found.Parcel), LookupPath: string(found.Path)})
}

// GetParcelHistory handles GET /api/v1/parcels/{code}/history.
func (s *Server) GetParcelHistory(ctx echo.Context, code string) error {
	query, err := queries.NewParcelHistoryQuery(code)
	if err != nil {
		return err
	}
	history, err := s.queries.ParcelHistory.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toHistory(history))
}

// VerifyParcel handles GET /api/v1/parcels/{code}/verify.
func (s *Server) VerifyParcel(ctx echo.Context, code string) error {
	query, err := queries.NewParcelHistoryQuery(code)
	if err != nil {
		return err
	}
	verification, err := s.queries.ParcelHistory.Verify(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toVerification(verification))
}

func (s *Server) ScanIn(ctx echo.Context, code string) error {
	return s.parcelEvent(ctx, "scan_in", func(act actor.Context) (commands.ParcelEventCommand, error) {
		return commands.NewScanInCommand(act, code)
	})
}

func (s *Server) BeginSort(ctx echo.Context, code string) error {
	return s.parcelEvent(ctx, "begin_sort", func(act actor.Context) (commands.ParcelEventCommand, error) {
		return commands.NewBeginSortCommand(act, code)
	})
}

func (s *Server) ArriveTransfer(ctx echo.Context, code string) error {
	return s.parcelEvent(ctx, "arrive_transfer", func(act actor.Context) (commands.ParcelEventCommand, error) {
		return commands.NewArriveTransferCommand(act, code)
	})
}

func (s *Server) Deliver(ctx echo.Context, code string) error {
	return s.parcelEvent(ctx, "deliver", func(act actor.Context) (commands.ParcelEventCommand, error) {
		return commands.NewDeliverCommand(act, code)
	})
}

func (s *Server) RequestReturn(ctx echo.Context, code string) error {
	var body ReasonRequest
	if err := bindBody(ctx, &body); err != nil {
		return err
	}
	return s.parcelEvent(ctx, "request_return", func(act actor.Context) (commands.ParcelEventCommand, error) {
		return commands.NewRequestReturnCommand(act, code, body.Reason)
	})
}

func (s *Server) ReceiveReturn(ctx echo.Context, code string) error {
	var body ReasonRequest
	if err := bindBody(ctx, &body); err != nil {
		return err
	}
	return s.parcelEvent(ctx, "receive_return", func(act actor.Context) (commands.ParcelEventCommand, error) {
		return commands.NewReceiveReturnCommand(act, code, body.Reason)
	})
}

// CancelParcel handles POST /api/v1/parcels/{code}/cancel. The body is
// optional.
func (s *Server) CancelParcel(ctx echo.Context, code string) error {
	var body OptionalReasonRequest
	if ctx.Request().ContentLength != 0 {
		if err := ctx.Bind(&body); err != nil {
			return err
		}
	}
	return s.parcelEvent(ctx, "cancel", func(act actor.Context) (commands.ParcelEventCommand, error) {
		return commands.NewCancelParcelCommand(act, code, body.Reason)
	})
}

// ScanOut handles POST /api/v1/parcels/{code}/scan-out. The parcel must sit
// on a manifest whose type matches the mode.
func (s *Server) ScanOut(ctx echo.Context, code string) error {
	act, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	var body ScanOutRequest
	if err := bindBody(ctx, &body); err != nil {
		return err
	}
	mode, err := commands.ParseScanOutMode(body.Mode)
	if err != nil {
		return err
	}
	cmd, err := commands.NewScanOutCommand(act, code, mode)
	if err != nil {
		return err
	}

	result, err := s.commands.ScanOut.Handle(ctx.Request().Context(), cmd)
	s.observe("scan_out", result.Changed, err)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toScanResult(result.Parcel, result.Path, result.Changed))
}

// BulkSort handles POST /api/v1/bulk-sort. Either every parcel is sorted or
// none is.
func (s *Server) BulkSort(ctx echo.Context) error {
	act, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	var body BulkSortRequest
	if err := bindBody(ctx, &body); err != nil {
		return err
	}
	cmd, err := commands.NewBulkSortCommand(act, body.ParcelIDs, body.SortBin, body.RouteCode)
	if err != nil {
		return err
	}

	result, err := s.commands.BulkSort.Handle(ctx.Request().Context(), cmd)
	s.observe("bulk_sort", result.Updated > 0, err)
	if err != nil {
		return err
	}
	s.metrics.ObserveBatch("bulk_sort", result.Updated)
	return ctx.JSON(http.StatusOK, BulkSortResult{Updated: result.Updated, Parcels: toParcels(result.Parcels)})
}

// ListStationParcels handles GET /api/v1/stations/current/parcels.
func (s *Server) ListStationParcels(ctx echo.Context, params ListStationParcelsParams) error {
	query, err := s.stationParcelsQuery(ctx, params.Status, params.Limit)
	if err != nil {
		return err
	}
	parcels, err := s.queries.StationParcels.Handle(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toParcels(parcels))
}

// CreateManifest handles POST /api/v1/manifests.
func (s *Server) CreateManifest(ctx echo.Context) error {
	act, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	var body CreateManifestRequest
	if err := bindBody(ctx, &body); err != nil {
		return err
	}
	cmd, err := commands.NewCreateManifestCommand(act, body.Type, body.ParcelIDs, manifest.RouteInfo{
		RouteCode:              body.RouteCode,
		DestinationStationID:   body.DestinationStationID,
		DestinationStationName: body.DestinationStationName,
	})
	if err != nil {
		return err
	}

	snapshot, err := s.commands.CreateManifest.Handle(ctx.Request().Context(), cmd)
	s.metrics.Observe("create_manifest", err)
	if err != nil {
		return err
	}
	s.metrics.ObserveBatch("create_manifest", len(snapshot.ParcelIDs))
	return ctx.JSON(http.StatusCreated, toManifest(snapshot))
}

// ListManifests handles GET /api/v1/manifests for the caller's station.
func (s *Server) ListManifests(ctx echo.Context, params ListManifestsParams) error {
	act, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	query, err := queries.NewListManifestsQuery(act, deref(params.Status), deref(params.Type), deref(params.Limit))
	if err != nil {
		return err
	}
	manifests, err := s.queries.Manifests.List(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	out := make([]Manifest, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, toManifest(m))
	}
	return ctx.JSON(http.StatusOK, out)
}

func (s *Server) GetManifest(ctx echo.Context, manifestId openapi_types.UUID) error {
	query, err := queries.NewGetManifestQuery(manifestId.String())
	if err != nil {
		return err
	}
	snapshot, err := s.queries.Manifests.Get(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toManifest(snapshot))
}

func (s *Server) FinalizeManifest(ctx echo.Context, manifestId openapi_types.UUID) error {
	act, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	cmd, err := commands.NewFinalizeManifestCommand(act, manifestId.String())
	if err != nil {
		return err
	}
	snapshot, err := s.commands.ManifestStatus.Finalize(ctx.Request().Context(), cmd)
	s.metrics.Observe("finalize_manifest", err)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toManifest(snapshot))
}

func (s *Server) DispatchManifest(ctx echo.Context, manifestId openapi_types.UUID) error {
	act, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	cmd, err := commands.NewDispatchManifestCommand(act, manifestId.String())
	if err != nil {
		return err
	}
	snapshot, err := s.commands.ManifestStatus.Dispatch(ctx.Request().Context(), cmd)
	s.metrics.Observe("dispatch_manifest", err)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toManifest(snapshot))
}

// CreateTransitRoute handles POST /api/v1/transit-routes. The caller's
// station is the origin.
func (s *Server) CreateTransitRoute(ctx echo.Context) error {
	act, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	var body CreateTransitRouteRequest
	if err := bindBody(ctx, &body); err != nil {
		return err
	}
	cmd, err := commands.NewCreateTransitRouteCommand(act, body.ToStationID, body.ToStationName, transit.Vehicle{
		VehicleNo:  body.VehicleNo,
		DriverName: body.DriverName,
	})
	if err != nil {
		return err
	}

	snapshot, err := s.commands.TransitRoute.Create(ctx.Request().Context(), cmd)
	s.metrics.Observe("create_transit_route", err)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, toTransitRoute(snapshot))
}

func (s *Server) ListTransitRoutes(ctx echo.Context, params ListTransitRoutesParams) error {
	criteria := queries.RouteCriteria{
		FromStationID: deref(params.FromStationId),
		ToStationID:   deref(params.ToStationId),
		StationID:     deref(params.StationId),
		Status:        deref(params.Status),
		Limit:         deref(params.Limit),
	}
	if params.Day != nil {
		criteria.Day = params.Day.Time
	}
	query, err := queries.NewListTransitRoutesQuery(criteria)
	if err != nil {
		return err
	}
	routes, err := s.queries.TransitRoutes.List(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	out := make([]TransitRoute, 0, len(routes))
	for _, r := range routes {
		out = append(out, toTransitRoute(r))
	}
	return ctx.JSON(http.StatusOK, out)
}

func (s *Server) GetTransitRoute(ctx echo.Context, routeId openapi_types.UUID) error {
	query, err := queries.NewGetTransitRouteQuery(routeId.String())
	if err != nil {
		return err
	}
	snapshot, err := s.queries.TransitRoutes.Get(ctx.Request().Context(), query)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toTransitRoute(snapshot))
}

func (s *Server) AdvanceTransitRoute(ctx echo.Context, routeId openapi_types.UUID) error {
	act, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	var body AdvanceTransitRouteRequest
	if err := bindBody(ctx, &body); err != nil {
		return err
	}
	cmd, err := commands.NewAdvanceTransitRouteCommand(act, routeId.String(), body.Status)
	if err != nil {
		return err
	}

	snapshot, err := s.commands.TransitRoute.Advance(ctx.Request().Context(), cmd)
	s.metrics.Observe("advance_transit_route", err)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toTransitRoute(snapshot))
}

func (s *Server) parcelEvent(
	ctx echo.Context,
	operation string,
	build func(actor.Context) (commands.ParcelEventCommand, error),
) error {
	act, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	cmd, err := build(act)
	if err != nil {
		return err
	}

	result, err := s.commands.ParcelEvent.Handle(ctx.Request().Context(), cmd)
	s.observe(operation, result.Changed, err)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, toScanResult(result.Parcel, result.Path, result.Changed))
}

func (s *Server) observe(operation string, changed bool, err error) {
	if err == nil && !changed {
		s.metrics.ObserveNoOp(operation)
		return
	}
	s.metrics.Observe(operation, err)
}

func (s *Server) stationParcelsQuery(ctx echo.Context, statuses *[]string, limit *int) (queries.ListStationParcelsQuery, error) {
	act, err := actorFrom(ctx)
	if err != nil {
		return queries.ListStationParcelsQuery{}, err
	}
	return queries.NewListStationParcelsQuery(act, deref(statuses), deref(limit))
}

func bindBody(ctx echo.Context, dest any) error {
	if err := ctx.Bind(dest); err != nil {
		return err
	}
	return ctx.Validate(dest)
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
