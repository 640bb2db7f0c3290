package commands_test

import (
	"strings"
	"testing"

	"parcelhub/internal/core/application/usecases/commands"
	"parcelhub/internal/core/domain/model/actor"
	"parcelhub/internal/core/domain/model/manifest"
	"parcelhub/internal/core/domain/model/transit"
	"parcelhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParcelEventCommand_Constructors(t *testing.T) {
	act := clerkAt(t, "S1")

	t.Run("code is trimmed", func(t *testing.T) {
		cmd, err := commands.NewScanInCommand(act, "  P1 ")
		require.NoError(t, err)
		assert.Equal(t, "P1", cmd.Code())
		assert.NoError(t, cmd.Validate())
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := commands.NewScanInCommand(act, " ")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("zero actor", func(t *testing.T) {
		_, err := commands.NewDeliverCommand(actor.Context{}, "P1")
		require.Error(t, err)
	})

	t.Run("zero value is rejected", func(t *testing.T) {
		assert.ErrorIs(t, commands.ParcelEventCommand{}.Validate(), commands.ErrParcelEventCommandIsNotConstructed)
	})
}

func TestBulkSortCommand(t *testing.T) {
	act := clerkAt(t, "S1")

	t.Run("ids are trimmed and deduplicated", func(t *testing.T) {
		cmd, err := commands.NewBulkSortCommand(act, []string{" P1", "P2", "P1", ""}, "A", "R1")
		require.NoError(t, err)
		assert.Equal(t, []string{"P1", "P2"}, cmd.ParcelIDs())
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := commands.NewBulkSortCommand(act, []string{" "}, "A", "R1")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("oversized batch", func(t *testing.T) {
		ids := make([]string, 501)
		for i := range ids {
			ids[i] = "P" + strings.Repeat("x", i+1)
		}
		_, err := commands.NewBulkSortCommand(act, ids, "A", "R1")
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestCreateManifestCommand(t *testing.T) {
	act := clerkAt(t, "S1")

	_, err := commands.NewCreateManifestCommand(act, "PALLET", []string{"P1"}, manifest.RouteInfo{})
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	cmd, err := commands.NewCreateManifestCommand(act, "delivery", []string{"P1"}, manifest.RouteInfo{RouteCode: "R1"})
	require.NoError(t, err)
	assert.NoError(t, cmd.Validate())
}

func TestTransitRouteCommands(t *testing.T) {
	act := clerkAt(t, "S1")

	_, err := commands.NewCreateTransitRouteCommand(act, "", "", transit.Vehicle{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = commands.NewAdvanceTransitRouteCommand(act, "not-a-uuid", "DISPATCHED")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = commands.NewAdvanceTransitRouteCommand(act, "6f1c1e0e-8d5e-4a8e-9a57-5b2f3d7c0a11", "TELEPORTED")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestRelayEventsCommand(t *testing.T) {
	_, err := commands.NewRelayEventsCommand("", 10)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = commands.NewRelayEventsCommand("kafka", commands.MaxRelayBatchSize+1)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	cmd, err := commands.NewRelayEventsCommand("kafka", 100)
	require.NoError(t, err)
	assert.NoError(t, cmd.Validate())
}
