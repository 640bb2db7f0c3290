package queries

import (
	"context"
	"errors"
	"strings"

	"parcelhub/internal/core/application/lookup"
	"parcelhub/internal/core/domain/model/event"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/core/ports"
	"parcelhub/internal/pkg/errs"
	"parcelhub/internal/pkg/guard"
)

var ErrParcelHistoryQueryIsNotConstructed = errors.New(
	"ParcelHistoryQuery must be created via NewParcelHistoryQuery constructor",
)

// ParcelHistoryQuery returns the audit trail of one parcel.
type ParcelHistoryQuery struct {
	code  string
	guard guard.ConstructorGuard
}

func NewParcelHistoryQuery(code string) (ParcelHistoryQuery, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return ParcelHistoryQuery{}, errs.NewValueIsRequiredError("code")
	}
	return ParcelHistoryQuery{code: code, guard: guard.NewConstructorGuard()}, nil
}

func (q ParcelHistoryQuery) Validate() error {
	return q.guard.Validate(ErrParcelHistoryQueryIsNotConstructed)
}

type ParcelHistoryQueryResponse struct {
	Parcel parcel.Snapshot
	// Events are ordered by log sequence, oldest first.
	Events []event.Snapshot
}

// ReplayVerification compares the stored status with the status the event
// log implies. A mismatch means the record and its trail diverged.
type ReplayVerification struct {
	ParcelID   string
	Stored     parcel.Status
	Replayed   parcel.Status
	Events     int
	Consistent bool
	// Problem holds the replay error when the trail itself is not a valid
	// path through the lifecycle.
	Problem string
}

type ParcelHistoryQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewParcelHistoryQueryHandler(uowFactory ports.UnitOfWorkFactory) ParcelHistoryQueryHandler {
	return ParcelHistoryQueryHandler{uowFactory: uowFactory}
}

func (h ParcelHistoryQueryHandler) Handle(ctx context.Context, query ParcelHistoryQuery) (ParcelHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return ParcelHistoryQueryResponse{}, err
	}

	uow := h.uowFactory.Create()

	found, err := lookup.NewResolver(uow.ParcelRepository()).Find(ctx, query.code)
	if err != nil {
		return ParcelHistoryQueryResponse{}, err
	}

	events, err := uow.EventRepository().ListByParcel(ctx, found.Parcel.ID())
	if err != nil {
		return ParcelHistoryQueryResponse{}, err
	}

	snapshots := make([]event.Snapshot, 0, len(events))
	for _, e := range events {
		snapshots = append(snapshots, e.Snapshot())
	}

	return ParcelHistoryQueryResponse{Parcel: found.Parcel.Snapshot(), Events: snapshots}, nil
}

// Verify replays the parcel's trail through the state machine.
func (h ParcelHistoryQueryHandler) Verify(ctx context.Context, query ParcelHistoryQuery) (ReplayVerification, error) {
	history, err := h.Handle(ctx, query)
	if err != nil {
		return ReplayVerification{}, err
	}

	evs := make([]parcel.Event, 0, len(history.Events))
	for _, e := range history.Events {
		// Manifest and route events never carry a parcel id, so every entry
		// here names a parcel event.
		ev, ok := e.Type.ParcelEvent()
		if !ok {
			return ReplayVerification{}, errs.NewValueIsInvalidError("event type " + string(e.Type))
		}
		evs = append(evs, ev)
	}

	out := ReplayVerification{
		ParcelID: history.Parcel.ID,
		Stored:   history.Parcel.Status,
		Events:   len(evs),
	}

	replayed, err := parcel.Replay(parcel.Created, evs)
	if err != nil {
		out.Problem = err.Error()
		return out, nil
	}
	out.Replayed = replayed
	out.Consistent = replayed == history.Parcel.Status
	return out, nil
}
