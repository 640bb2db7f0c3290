package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"parcelhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("parcel", "P-100")

		assert.Equal(t, "parcel", err.ParamName)
		assert.Equal(t, "P-100", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: P-100", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("parcel", "P-100", cause)

		assert.Equal(t,
			"object not found: param is: parcel, ID is: P-100 (cause: database connection failed)",
			err.Error())
	})

	t.Run("non string ids are formatted", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("sequence", 456)
		assert.Equal(t, "object not found: 456", err.Error())
	})
}

func TestValueErrors(t *testing.T) {
	t.Run("invalid", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("status", errors.New("unknown"))
		assert.Equal(t, "value is invalid: status (cause: unknown)", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("required", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("sortBin")
		assert.Equal(t, "value is required: sortBin", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("out of range sanitizes newlines", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("parcelIds", "a\nb", 1, 500)
		assert.Equal(t, "value is invalid: a b is parcelIds, min value is 1, max value is 500", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestStationMismatchError(t *testing.T) {
	err := errs.NewStationMismatchError("P1", "S2", "S1")

	assert.Equal(t, `station mismatch: P1 is held by station "S2", actor station is "S1"`, err.Error())
	require.ErrorIs(t, err, errs.ErrStationMismatch)
}

func TestInvalidTransitionError(t *testing.T) {
	err := errs.NewInvalidTransitionError("P1", "delivered", "SORT")

	assert.Equal(t, "invalid transition: P1 cannot SORT from delivered", err.Error())
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestBatchConflictError(t *testing.T) {
	cause := errors.New("could not serialize access")
	err := errs.NewBatchConflictError("bulk sort", cause)

	require.ErrorIs(t, err, errs.ErrBatchConflict)
	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "bulk sort")
	assert.True(t, errs.Retryable(err))
}

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want errs.Kind
	}{
		{"nil", nil, ""},
		{"not found", errs.NewObjectNotFoundError("parcel", "x"), errs.KindNotFound},
		{"station", errs.NewStationMismatchError("x", "a", "b"), errs.KindStationMismatch},
		{"transition", errs.NewInvalidTransitionError("x", "a", "b"), errs.KindInvalidTransition},
		{"missing field", errs.NewValueIsRequiredError("routeCode"), errs.KindMissingField},
		{"invalid value", errs.NewValueIsInvalidError("type"), errs.KindInvalidValue},
		{"conflict", errs.NewBatchConflictError("commit", nil), errs.KindBatchConflict},
		{"station context", errs.ErrMissingStationContext, errs.KindMissingStationContext},
		{"wrapped", fmt.Errorf("scan in: %w", errs.NewObjectNotFoundError("parcel", "x")), errs.KindNotFound},
		{"unknown", errors.New("boom"), errs.KindInternal},
		{
			"joined batch prefers station mismatch",
			errors.Join(
				errs.NewInvalidTransitionError("P2", "sorted", "SORT"),
				errs.NewStationMismatchError("P1", "S2", "S1"),
			),
			errs.KindStationMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errs.KindOf(tc.err))
		})
	}
}

func TestRetryable_OnlyBatchConflict(t *testing.T) {
	assert.False(t, errs.Retryable(errs.NewStationMismatchError("x", "a", "b")))
	assert.False(t, errs.Retryable(errs.NewValueIsRequiredError("bin")))
	assert.True(t, errs.Retryable(errs.NewBatchConflictError("commit", nil)))
}
