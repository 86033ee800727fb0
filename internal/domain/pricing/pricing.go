package pricing

import (
	"stayhub/internal/domain/shared/fault"
)

var (
	ErrInvalidNights  = fault.New(fault.ErrInvalidInput, "invalid_input", "pricing: nights must be a positive integer")
	ErrNegativeRate   = fault.New(fault.ErrInvalidInput, "invalid_input", "pricing: rates must be non-negative")
	ErrNegativeGuests = fault.New(fault.ErrInvalidInput, "invalid_input", "pricing: guest counts must be non-negative")
)

// RateSchedule holds the per-night rate of each guest category plus the flat
// rate charged for the housing itself.
type RateSchedule struct {
	Adult  float64
	Kid    float64
	Animal float64
	Base   float64
}

func (r RateSchedule) Validate() error {
	if r.Adult < 0 || r.Kid < 0 || r.Animal < 0 || r.Base < 0 {
		return ErrNegativeRate
	}
	return nil
}

// Nominal is the reference price shown on a listing: the sum of the four rates.
func (r RateSchedule) Nominal() float64 {
	return r.Adult + r.Kid + r.Animal + r.Base
}

type GuestCount struct {
	Adults  int
	Kids    int
	Animals int
}

func (g GuestCount) Validate() error {
	if g.Adults < 0 || g.Kids < 0 || g.Animals < 0 {
		return ErrNegativeGuests
	}
	return nil
}

type Stay struct {
	Nights   int
	PerNight float64
	Total    float64
}

// ComputeStay prices a stay. No rounding is applied.
func ComputeStay(rates RateSchedule, guests GuestCount, nights int) (Stay, error) {
	if nights <= 0 {
		return Stay{}, ErrInvalidNights
	}
	if err := rates.Validate(); err != nil {
		return Stay{}, err
	}
	if err := guests.Validate(); err != nil {
		return Stay{}, err
	}
	perNight := rates.Adult*float64(guests.Adults) +
		rates.Kid*float64(guests.Kids) +
		rates.Animal*float64(guests.Animals) +
		rates.Base
	return Stay{
		Nights:   nights,
		PerNight: perNight,
		Total:    perNight * float64(nights),
	}, nil
}
