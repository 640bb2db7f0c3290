package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/pkg/errs"
)

type RegisterParcelCommandHandler struct {
	uowFactory ParcelUoWFactory
	now        func() time.Time
}

func NewRegisterParcelCommandHandler(uowFactory ParcelUoWFactory, now func() time.Time) RegisterParcelCommandHandler {
	if now == nil {
		now = time.Now
	}
	return RegisterParcelCommandHandler{uowFactory: uowFactory, now: now}
}

func (h RegisterParcelCommandHandler) Handle(ctx context.Context, command RegisterParcelCommand) (parcel.Snapshot, error) {
	if err := command.Validate(); err != nil {
		return parcel.Snapshot{}, err
	}
	station, err := command.actor.RequireStation()
	if err != nil {
		return parcel.Snapshot{}, err
	}

	at := h.now()
	p, err := parcel.NewParcel(command.parcelID, command.trackingID, station, at)
	if err != nil {
		return parcel.Snapshot{}, err
	}
	e, err := event.NewParcelEvent(p, parcel.Registered, command.actor, "", nil, at)
	if err != nil {
		return parcel.Snapshot{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return parcel.Snapshot{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ParcelRepository()

	_, err = repo.Get(ctx, p.ID())
	switch {
	case err == nil:
		return parcel.Snapshot{}, errs.NewValueIsInvalidErrorWithCause("id", fmt.Errorf("parcel %s already exists", p.ID()))
	case !errors.Is(err, errs.ErrObjectNotFound):
		return parcel.Snapshot{}, err
	}

	if err = repo.Add(ctx, p, e); err != nil {
		return parcel.Snapshot{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return parcel.Snapshot{}, err
	}

	return p.Snapshot(), nil
}
