package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// StreamStationParcels handles GET /api/v1/stations/current/parcels/stream.
// It pushes the caller's station parcel set as server-sent events: one
// "parcels" event with the current set, then one after every change.
func (s *Server) StreamStationParcels(ctx echo.Context, params StreamStationParcelsParams) error {
	query, err := s.stationParcelsQuery(ctx, params.Status, nil)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	sets, err := s.feed.Subscribe(reqCtx, query.Filter())
	if err != nil {
		return err
	}

	w := ctx.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-reqCtx.Done():
			return nil
		case set, ok := <-sets:
			if !ok {
				return nil
			}
			data, err := json.Marshal(toParcels(set))
			if err != nil {
				s.logger.ErrorContext(reqCtx, "failed to encode parcel set", "error", err)
				return nil
			}
			if _, err := fmt.Fprintf(w, "event: parcels\ndata: %s\n\n", data); err != nil {
				return nil
			}
			w.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
