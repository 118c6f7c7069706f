package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredContainers(t *testing.T) {
	tests := []struct {
		name     string
		required string
		perUnit  string
		want     int64
	}{
		{"rounds up", "220", "50", 5},
		{"exact", "200", "50", 4},
		{"nothing needed", "0", "50", 0},
		{"fractional content", "0.75", "0.5", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequiredContainers(d(tt.required), d(tt.perUnit))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequiredContainers_DivisionByZero(t *testing.T) {
	_, err := RequiredContainers(d("220"), d("0"))
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = RequiredContainers(d("220"), d("-5"))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestAvailableContent(t *testing.T) {
	stock := int64(10)
	assertDecimal(t, "2200", AvailableContent(&stock, d("220")))
	assertDecimal(t, "0", AvailableContent(nil, d("220")))
}

func TestMakeableUnits(t *testing.T) {
	got, err := MakeableUnits(d("2200"), d("300"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)

	got, err = MakeableUnits(d("0"), d("300"))
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = MakeableUnits(d("10"), d("0"))
	assert.ErrorIs(t, err, ErrInvalidContent)
}
