// Package queries contains the read operations of the parcel engine. Queries
// never open a transaction: they read through a fresh unit of work whose
// repositories go straight to the store, so they work the same over postgres
// and the memory store.
//
// Example:
//
//	query, err := NewGetParcelQuery("TRK-0042")
//	if err != nil {
//	    return err
//	}
//	found, err := NewGetParcelQueryHandler(uowFactory).Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("lookup failed: %w", err)
//	}
//	fmt.Println(found.Parcel.Status, found.Path)
package queries

import (
	"context"
	"errors"
	"strings"

	"parcelhub/internal/core/application/lookup"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"
)

var ErrGetParcelQueryIsNotConstructed = errors.New("GetParcelQuery must be created via NewGetParcelQuery constructor")

// GetParcelQuery finds a parcel by primary key or tracking id.
type GetParcelQuery struct {
	code  string
	guard guard.ConstructorGuard
}

func NewGetParcelQuery(code string) (GetParcelQuery, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return GetParcelQuery{}, errs.NewValueIsRequiredError("code")
	}
	return GetParcelQuery{code: code, guard: guard.NewConstructorGuard()}, nil
}

func (q GetParcelQuery) Validate() error {
	return q.guard.Validate(ErrGetParcelQueryIsNotConstructed)
}

// GetParcelQueryResponse tells the caller which key matched.
type GetParcelQueryResponse struct {
	Parcel parcel.Snapshot
	Path   lookup.Path
}

type GetParcelQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetParcelQueryHandler(uowFactory ports.UnitOfWorkFactory) GetParcelQueryHandler {
	return GetParcelQueryHandler{uowFactory: uowFactory}
}

func (h GetParcelQueryHandler) Handle(ctx context.Context, query GetParcelQuery) (GetParcelQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetParcelQueryResponse{}, err
	}

	found, err := lookup.NewResolver(h.uowFactory.Create().ParcelRepository()).Find(ctx, query.code)
	if err != nil {
		return GetParcelQueryResponse{}, err
	}

	return GetParcelQueryResponse{Parcel: found.Parcel.Snapshot(), Path: found.Path}, nil
}
