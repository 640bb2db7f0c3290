package ports

import (
	"context"

	"parcelhub/internal/core/domain/model/parcel"
)

// ChangeFeed lets dashboards watch a parcel query. The channel first carries
// the current matching set, then the full set again after every committed
// change that may affect it. It is closed when ctx ends. Slow readers may miss
// intermediate sets but always receive the latest one.
type ChangeFeed interface {
	Subscribe(ctx context.Context, filter ParcelFilter) (<-chan []parcel.Snapshot, error)
}
