package parcel_test

import (
	"testing"

	"parcelhub/internal/core/domain/model/parcel"
	"parcelhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range parcel.AllStatuses() {
		parsed, err := parcel.ParseStatus(" " + string(s) + " ")
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := parcel.ParseStatus("in_transit")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStatus_IsTerminal(t *testing.T) {
	terminal := map[parcel.Status]bool{parcel.Delivered: true, parcel.Cancelled: true}

	for _, s := range parcel.AllStatuses() {
		assert.Equal(t, terminal[s], s.IsTerminal(), s)
	}
	assert.Len(t, parcel.AllStatuses(), 12)
}

func TestParseEvent(t *testing.T) {
	ev, err := parcel.ParseEvent("scan_in")
	require.NoError(t, err)
	assert.Equal(t, parcel.ScanIn, ev)

	ev, err = parcel.ParseEvent("REGISTERED")
	require.NoError(t, err)
	assert.Equal(t, parcel.Registered, ev)

	_, err = parcel.ParseEvent("LOAD")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
