package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/domain/shared/fault"
)

func TestComputeStay(t *testing.T) {
	rates := RateSchedule{Adult: 100, Kid: 50, Animal: 30, Base: 200}
	stay, err := ComputeStay(rates, GuestCount{Adults: 2, Kids: 1, Animals: 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, 480.0, stay.PerNight)
	assert.Equal(t, 1440.0, stay.Total)
	assert.Equal(t, 3, stay.Nights)
}

func TestComputeStayWithoutGuestsChargesBase(t *testing.T) {
	stay, err := ComputeStay(RateSchedule{Adult: 10, Base: 75}, GuestCount{}, 2)
	require.NoError(t, err)
	assert.Equal(t, 75.0, stay.PerNight)
	assert.Equal(t, 150.0, stay.Total)
}

func TestComputeStayRejectsInvalidInput(t *testing.T) {
	rates := RateSchedule{Adult: 1, Kid: 1, Animal: 1, Base: 1}
	cases := []struct {
		name   string
		rates  RateSchedule
		guests GuestCount
		nights int
		want   error
	}{
		{"zero nights", rates, GuestCount{Adults: 1}, 0, ErrInvalidNights},
		{"negative nights", rates, GuestCount{Adults: 1}, -2, ErrInvalidNights},
		{"negative rate", RateSchedule{Kid: -1}, GuestCount{Adults: 1}, 1, ErrNegativeRate},
		{"negative guests", rates, GuestCount{Animals: -1}, 1, ErrNegativeGuests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeStay(tc.rates, tc.guests, tc.nights)
			require.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, fault.ErrInvalidInput)
		})
	}
}

func TestNominal(t *testing.T) {
	assert.Equal(t, 380.0, RateSchedule{Adult: 100, Kid: 50, Animal: 30, Base: 200}.Nominal())
}
