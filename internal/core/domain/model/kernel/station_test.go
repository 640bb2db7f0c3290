package kernel_test

import (
	"testing"

	"parcelhub/internal/core/domain/model/kernel"
	"parcelhub/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStation(t *testing.T) {
	t.Run("trims and keeps name", func(t *testing.T) {
		s, err := kernel.NewStation(" S1 ", "Jakarta Hub")

		require.NoError(t, err)
		assert.Equal(t, "S1", s.ID())
		assert.Equal(t, "Jakarta Hub", s.Name())
		assert.Equal(t, "S1 (Jakarta Hub)", s.String())
	})

	t.Run("id required", func(t *testing.T) {
		_, err := kernel.NewStation("  ", "Nowhere")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestStation_Is(t *testing.T) {
	s := kernel.RestoreStation("S1", "")

	assert.True(t, s.Is("S1"))
	assert.False(t, s.Is("S2"))
	assert.False(t, kernel.Station{}.Is(""))
	assert.True(t, kernel.Station{}.IsZero())
	assert.Equal(t, "S1", s.String())
}
