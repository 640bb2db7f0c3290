package commands_test

import (
	"errors"
	"testing"

	"parcelhub/internal/core/application/lookup"
	"parcelhub/internal/core/application/usecases/commands"
	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParcelEventCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewScanInCommand(clerkAt(t, "S1"), "P1")
	require.NoError(t, err)

	repo := new(MockParcelRepository)
	uow := new(MockParcelUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("ParcelRepository").Return(repo).Once(),
		repo.On("Get", ctx, "P1").Return(stored(t, "P1", parcel.Created, "S1"), nil).Once(),
		repo.On("Update", ctx, mock.AnythingOfType("*parcel.Parcel"), mock.AnythingOfType("*event.WarehouseEvent")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockParcelUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewParcelEventCommandHandler(factory, clock)
	res, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, lookup.FoundByKey, res.Path)
	assert.Equal(t, parcel.InboundReceived, res.Parcel.Status)
	assert.Equal(t, fixedNow, res.Parcel.UpdatedAt)
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestParcelEventCommandHandler_Handle_FoundByTrackingID(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewDeliverCommand(clerkAt(t, "S1"), "TRK-P1")
	require.NoError(t, err)

	repo := new(MockParcelRepository)
	repo.On("Get", ctx, "TRK-P1").Return(nil, errs.NewObjectNotFoundError("parcel", "TRK-P1")).Once()
	repo.On("FindByTrackingID", ctx, "TRK-P1").Return(stored(t, "P1", parcel.OutForDelivery, "S1"), nil).Once()
	repo.On("Update", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	uow := new(MockParcelUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("ParcelRepository").Return(repo)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)

	factory := new(MockParcelUoWFactory)
	factory.On("Create").Return(uow)

	res, err := commands.NewParcelEventCommandHandler(factory, clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, lookup.FoundBySecondary, res.Path)
	assert.Equal(t, parcel.Delivered, res.Parcel.Status)
	repo.AssertExpectations(t)
}

func TestParcelEventCommandHandler_Handle_RepeatedScanWritesNothing(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewScanInCommand(clerkAt(t, "S1"), "P1")
	require.NoError(t, err)

	repo := new(MockParcelRepository)
	repo.On("Get", ctx, "P1").Return(stored(t, "P1", parcel.InboundReceived, "S1"), nil).Once()

	uow := new(MockParcelUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ParcelRepository").Return(repo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockParcelUoWFactory)
	factory.On("Create").Return(uow).Once()

	res, err := commands.NewParcelEventCommandHandler(factory, clock).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, parcel.InboundReceived, res.Parcel.Status)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestParcelEventCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	factory := new(MockParcelUoWFactory)

	_, err := commands.NewParcelEventCommandHandler(factory, clock).Handle(ctx, commands.ParcelEventCommand{})

	require.ErrorIs(t, err, commands.ErrParcelEventCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestParcelEventCommandHandler_Handle_MissingStationContext(t *testing.T) {
	ctx := t.Context()
	act, err := actor.NewContext("u-1", "", "", actor.RoleRider)
	require.NoError(t, err)
	cmd, err := commands.NewDeliverCommand(act, "P1")
	require.NoError(t, err)

	factory := new(MockParcelUoWFactory)

	_, err = commands.NewParcelEventCommandHandler(factory, clock).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrMissingStationContext)
	factory.AssertNotCalled(t, "Create")
}

func TestParcelEventCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewScanInCommand(clerkAt(t, "S1"), "P1")
	require.NoError(t, err)

	uow := new(MockParcelUoW)
	factory := new(MockParcelUoWFactory)
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	_, err = commands.NewParcelEventCommandHandler(factory, clock).Handle(ctx, cmd)

	require.Error(t, err)
	uow.AssertExpectations(t)
}

func TestParcelEventCommandHandler_Handle_StationMismatch(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewDeliverCommand(clerkAt(t, "S2"), "P1")
	require.NoError(t, err)

	repo := new(MockParcelRepository)
	repo.On("Get", ctx, "P1").Return(stored(t, "P1", parcel.OutForDelivery, "S1"), nil).Once()

	uow := new(MockParcelUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ParcelRepository").Return(repo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockParcelUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = commands.NewParcelEventCommandHandler(factory, clock).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrStationMismatch)
	assert.Equal(t, errs.KindStationMismatch, errs.KindOf(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestParcelEventCommandHandler_Handle_CommitError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewScanInCommand(clerkAt(t, "S1"), "P1")
	require.NoError(t, err)

	repo := new(MockParcelRepository)
	repo.On("Get", ctx, "P1").Return(stored(t, "P1", parcel.Created, "S1"), nil).Once()
	repo.On("Update", ctx, mock.Anything, mock.Anything).Return(nil).Once()

	conflict := errs.NewBatchConflictError("commit", errors.New("could not serialize access"))
	uow := new(MockParcelUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("ParcelRepository").Return(repo).Once(),
		uow.On("Commit", ctx).Return(conflict).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockParcelUoWFactory)
	factory.On("Create").Return(uow).Once()

	_, err = commands.NewParcelEventCommandHandler(factory, clock).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrBatchConflict)
	uow.AssertExpectations(t)
}
