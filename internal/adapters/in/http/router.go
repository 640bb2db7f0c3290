package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const APIPrefix = "/api/v1"

// NewEcho builds the HTTP surface: health, metrics and swagger are public,
// everything under APIPrefix needs a bearer token and a request that
// matches openapi.json.
func NewEcho(server *Server, jwtSecret []byte, logger *slog.Logger) (*echo.Echo, error) {
	doc, err := LoadOpenAPI()
	if err != nil {
		return nil, err
	}
	requestValidator, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = NewBodyValidator()
	e.HTTPErrorHandler = ErrorHandler(logger)
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group(APIPrefix, ActorMiddleware(jwtSecret), requestValidator)
	RegisterHandlers(api, server)

	return e, nil
}
