package http

import (
	"errors"
	"log/slog"
	"net/http"

	"parcelhub/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every failed API call.
type Error struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindStationMismatch, errs.KindMissingStationContext:
		return http.StatusForbidden
	case errs.KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case errs.KindMissingField, errs.KindInvalidValue:
		return http.StatusBadRequest
	case errs.KindBatchConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler writes domain errors with their kind and reason. Echo's own
// errors (unknown route, bad method, missing token) keep their status.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		body := Error{Message: err.Error()}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			body.Code = he.Code
			body.Kind = http.StatusText(he.Code)
			if msg, ok := he.Message.(string); ok {
				body.Message = msg
			}
		} else {
			kind := errs.KindOf(err)
			body.Code = statusFor(kind)
			body.Kind = string(kind)
		}

		if body.Code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
			body.Message = http.StatusText(body.Code)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(body.Code)
			return
		}
		_ = c.JSON(body.Code, body)
	}
}
