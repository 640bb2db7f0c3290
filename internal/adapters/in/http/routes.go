package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type ListStationParcelsParams struct {
	Status *[]string `form:"status,omitempty" json:"status,omitempty"`
	Limit  *int      `form:"limit,omitempty" json:"limit,omitempty"`
}

type StreamStationParcelsParams struct {
	Status *[]string `form:"status,omitempty" json:"status,omitempty"`
}

type ListManifestsParams struct {
	Status *string `form:"status,omitempty" json:"status,omitempty"`
	Type   *string `form:"type,omitempty" json:"type,omitempty"`
	Limit  *int    `form:"limit,omitempty" json:"limit,omitempty"`
}

type ListTransitRoutesParams struct {
	FromStationId *string             `form:"fromStationId,omitempty" json:"fromStationId,omitempty"`
	ToStationId   *string             `form:"toStationId,omitempty" json:"toStationId,omitempty"`
	StationId     *string             `form:"stationId,omitempty" json:"stationId,omitempty"`
	Status        *string             `form:"status,omitempty" json:"status,omitempty"`
	Day           *openapi_types.Date `form:"day,omitempty" json:"day,omitempty"`
	Limit         *int                `form:"limit,omitempty" json:"limit,omitempty"`
}

// ServerInterface lists the operations of openapi.json.
type ServerInterface interface {
	RegisterParcel(ctx echo.Context) error
	GetParcel(ctx echo.Context, code string) error
	GetParcelHistory(ctx echo.Context, code string) error
	VerifyParcel(ctx echo.Context, code string) error
	ScanIn(ctx echo.Context, code string) error
	BeginSort(ctx echo.Context, code string) error
	ScanOut(ctx echo.Context, code string) error
	ArriveTransfer(ctx echo.Context, code string) error
	Deliver(ctx echo.Context, code string) error
	RequestReturn(ctx echo.Context, code string) error
	ReceiveReturn(ctx echo.Context, code string) error
	CancelParcel(ctx echo.Context, code string) error
	BulkSort(ctx echo.Context) error
	ListStationParcels(ctx echo.Context, params ListStationParcelsParams) error
	StreamStationParcels(ctx echo.Context, params StreamStationParcelsParams) error
	CreateManifest(ctx echo.Context) error
	ListManifests(ctx echo.Context, params ListManifestsParams) error
	GetManifest(ctx echo.Context, manifestId openapi_types.UUID) error
	FinalizeManifest(ctx echo.Context, manifestId openapi_types.UUID) error
	DispatchManifest(ctx echo.Context, manifestId openapi_types.UUID) error
	CreateTransitRoute(ctx echo.Context) error
	ListTransitRoutes(ctx echo.Context, params ListTransitRoutesParams) error
	GetTransitRoute(ctx echo.Context, routeId openapi_types.UUID) error
	AdvanceTransitRoute(ctx echo.Context, routeId openapi_types.UUID) error
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers mounts si under router. Paths are relative to /api/v1.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	w := &serverInterfaceWrapper{handler: si}

	router.POST("/parcels", si.RegisterParcel)
	router.GET("/parcels/:code", w.withCode(si.GetParcel))
	router.GET("/parcels/:code/history", w.withCode(si.GetParcelHistory))
	router.GET("/parcels/:code/verify", w.withCode(si.VerifyParcel))
	router.POST("/parcels/:code/scan-in", w.withCode(si.ScanIn))
	router.POST("/parcels/:code/begin-sort", w.withCode(si.BeginSort))
	router.POST("/parcels/:code/scan-out", w.withCode(si.ScanOut))
	router.POST("/parcels/:code/arrive-transfer", w.withCode(si.ArriveTransfer))
	router.POST("/parcels/:code/deliver", w.withCode(si.Deliver))
	router.POST("/parcels/:code/request-return", w.withCode(si.RequestReturn))
	router.POST("/parcels/:code/receive-return", w.withCode(si.ReceiveReturn))
	router.POST("/parcels/:code/cancel", w.withCode(si.CancelParcel))
	router.POST("/bulk-sort", si.BulkSort)
	router.GET("/stations/current/parcels", w.ListStationParcels)
	router.GET("/stations/current/parcels/stream", w.StreamStationParcels)
	router.POST("/manifests", si.CreateManifest)
	router.GET("/manifests", w.ListManifests)
	router.GET("/manifests/:manifestId", w.withUUID("manifestId", si.GetManifest))
	router.POST("/manifests/:manifestId/finalize", w.withUUID("manifestId", si.FinalizeManifest))
	router.POST("/manifests/:manifestId/dispatch", w.withUUID("manifestId", si.DispatchManifest))
	router.POST("/transit-routes", si.CreateTransitRoute)
	router.GET("/transit-routes", w.ListTransitRoutes)
	router.GET("/transit-routes/:routeId", w.withUUID("routeId", si.GetTransitRoute))
	router.POST("/transit-routes/:routeId/advance", w.withUUID("routeId", si.AdvanceTransitRoute))
}

// serverInterfaceWrapper converts echo contexts to typed parameters.
type serverInterfaceWrapper struct {
	handler ServerInterface
}

func (w *serverInterfaceWrapper) withCode(fn func(echo.Context, string) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var code string
		err := runtime.BindStyledParameterWithOptions("simple", "code", ctx.Param("code"), &code,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter code: %s", err))
		}
		return fn(ctx, code)
	}
}

func (w *serverInterfaceWrapper) withUUID(name string, fn func(echo.Context, openapi_types.UUID) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var id openapi_types.UUID
		err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
		}
		return fn(ctx, id)
	}
}

func (w *serverInterfaceWrapper) ListStationParcels(ctx echo.Context) error {
	var params ListStationParcelsParams
	if err := bindQuery(ctx, "status", true, &params.Status); err != nil {
		return err
	}
	if err := bindQuery(ctx, "limit", true, &params.Limit); err != nil {
		return err
	}
	return w.handler.ListStationParcels(ctx, params)
}

func (w *serverInterfaceWrapper) StreamStationParcels(ctx echo.Context) error {
	var params StreamStationParcelsParams
	if err := bindQuery(ctx, "status", true, &params.Status); err != nil {
		return err
	}
	return w.handler.StreamStationParcels(ctx, params)
}

func (w *serverInterfaceWrapper) ListManifests(ctx echo.Context) error {
	var params ListManifestsParams
	if err := bindQuery(ctx, "status", true, &params.Status); err != nil {
		return err
	}
	if err := bindQuery(ctx, "type", true, &params.Type); err != nil {
		return err
	}
	if err := bindQuery(ctx, "limit", true, &params.Limit); err != nil {
		return err
	}
	return w.handler.ListManifests(ctx, params)
}

func (w *serverInterfaceWrapper) ListTransitRoutes(ctx echo.Context) error {
	var params ListTransitRoutesParams
	for name, dest := range map[string]any{
		"fromStationId": &params.FromStationId,
		"toStationId":   &params.ToStationId,
		"stationId":     &params.StationId,
		"status":        &params.Status,
		"day":           &params.Day,
		"limit":         &params.Limit,
	} {
		if err := bindQuery(ctx, name, true, dest); err != nil {
			return err
		}
	}
	return w.handler.ListTransitRoutes(ctx, params)
}

func bindQuery(ctx echo.Context, name string, explode bool, dest any) error {
	if err := runtime.BindQueryParameter("form", explode, false, name, ctx.QueryParams(), dest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return nil
}
