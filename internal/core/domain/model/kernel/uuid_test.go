package kernel_test

import (
	"testing"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	id1 := kernel.NewUUID()
	id2 := kernel.NewUUID()

	require.NoError(t, id1.Validate())
	assert.False(t, id1.IsZero())
	assert.False(t, id1.IsEqual(id2))
}

func TestParseUUID(t *testing.T) {
	canonical := "550e8400-e29b-41d4-a716-446655440000"

	testCases := []struct {
		name  string
		input string
	}{
		{"canonical", canonical},
		{"braces", "{550e8400-e29b-41d4-a716-446655440000}"},
		{"urn", "urn:uuid:550e8400-e29b-41d4-a716-446655440000"},
		{"no hyphens", "550e8400e29b41d4a716446655440000"},
		{"upper case", "550E8400-E29B-41D4-A716-446655440000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := kernel.ParseUUID(tc.input)

			require.NoError(t, err)
			assert.Equal(t, canonical, id.String())
		})
	}

	t.Run("malformed", func(t *testing.T) {
		_, err := kernel.ParseUUID("manifest-1")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("nil uuid", func(t *testing.T) {
		_, err := kernel.ParseUUID(uuid.Nil.String())

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})
}

func TestUUID_ZeroValue(t *testing.T) {
	var id kernel.UUID

	assert.True(t, id.IsZero())
	require.ErrorIs(t, id.Validate(), errs.ErrValueIsRequired)
}

func TestUUID_GoogleRoundTrip(t *testing.T) {
	id := kernel.NewUUID()

	assert.True(t, id.IsEqual(kernel.UUIDFromGoogle(id.Google())))
}

func TestMustParseUUID_Panics(t *testing.T) {
	assert.Panics(t, func() { kernel.MustParseUUID("bad") })
}
