// Package lookup resolves a scanned code to a parcel. A label may carry the
// parcel id or the tracking id, and the two can differ, so resolution is an
// explicit two-step read whose result says which step matched.
package lookup

import (
	"context"
	"errors"
	"strings"

	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"
)

// Path tells which key matched.
type Path string

const (
	FoundByKey       Path = "FoundByKey"
	FoundBySecondary Path = "FoundBySecondary"
)

type Result struct {
	Parcel *parcel.Parcel
	Path   Path
}

type Reader interface {
	Get(ctx context.Context, id string) (*parcel.Parcel, error)
	FindByTrackingID(ctx context.Context, trackingID string) (*parcel.Parcel, error)
}

var _ Reader = (ports.ParcelRepository)(nil)

type Resolver struct {
	reader Reader
}

func NewResolver(reader Reader) Resolver {
	return Resolver{reader: reader}
}

// Find tries the primary key first and falls back to the tracking id. A miss
// on both is errs.ObjectNotFoundError; any other read failure is returned
// as is.
func (r Resolver) Find(ctx context.Context, code string) (Result, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Result{}, errs.NewValueIsRequiredError("code")
	}

	p, err := r.reader.Get(ctx, code)
	if err == nil {
		return Result{Parcel: p, Path: FoundByKey}, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return Result{}, err
	}

	p, err = r.reader.FindByTrackingID(ctx, code)
	if err == nil {
		return Result{Parcel: p, Path: FoundBySecondary}, nil
	}
	if errors.Is(err, errs.ErrObjectNotFound) {
		return Result{}, errs.NewObjectNotFoundError("parcel", code)
	}
	return Result{}, err
}
