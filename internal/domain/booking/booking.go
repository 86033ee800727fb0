package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
	"stayhub/internal/domain/shared/fault"
	"stayhub/internal/domain/user"
)

var (
	ErrIDRequired       = fault.New(fault.ErrInvalidInput, "invalid_input", "booking: id is required")
	ErrUserRequired     = fault.New(fault.ErrInvalidInput, "invalid_input", "booking: user is required")
	ErrListingRequired  = fault.New(fault.ErrInvalidInput, "invalid_input", "booking: housing is required")
	ErrInvalidID        = fault.New(fault.ErrInvalidInput, "invalid_id", "booking: invalid id")
	ErrCapacityExceeded = fault.New(fault.ErrInvalidInput, "capacity_exceeded", "booking: guest capacity exceeded")
	ErrInvalidDateRange = fault.New(fault.ErrInvalidInput, "invalid_date_range", "booking: end date must be after start date")
	ErrDatesUnavailable = fault.New(fault.ErrInvalidInput, "dates_unavailable", "booking: booking dates are not within available dates")
	ErrNotFound         = fault.New(fault.ErrNotFound, "booking_not_found", "booking: not found")
	ErrNotBooker        = fault.New(fault.ErrForbidden, "forbidden", "booking: not allowed to view this booking")
)

// CapacityError names the guest category over its cap.
type CapacityError struct {
	Category string
	Limit    int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("booking: number of %s exceeds the allowed limit (%d)", e.Category, e.Limit)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

type ID string

func NewID() ID { return ID(uuid.NewString()) }

func ParseID(raw string) (ID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidID
	}
	return ID(parsed.String()), nil
}

// Booking is written once and never mutated. Price fields are a snapshot of
// the listing's rates at booking time.
type Booking struct {
	ID            ID
	UserID        user.ID
	ListingID     listings.ID
	Range         daterange.DateRange
	Guests        pricing.GuestCount
	Nights        int
	TotalPrice    float64
	PerNightPrice float64
	CreatedAt     time.Time
	events.EventRecorder
}

type Repository interface {
	Save(ctx context.Context, b *Booking) error
	ByID(ctx context.Context, id ID) (*Booking, error)
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID user.ID) ([]*Booking, error)
	// Delete exists for compensating a booking whose availability write failed.
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID        ID
	UserID    user.ID
	ListingID listings.ID
	Range     daterange.DateRange
	Guests    pricing.GuestCount
	Stay      pricing.Stay
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	if strings.TrimSpace(string(params.ListingID)) == "" {
		return nil, ErrListingRequired
	}
	if params.Range.Validate() != nil || params.Stay.Nights < 1 {
		return nil, ErrInvalidDateRange
	}
	if err := params.Guests.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	b := &Booking{
		ID:            params.ID,
		UserID:        params.UserID,
		ListingID:     params.ListingID,
		Range:         params.Range,
		Guests:        params.Guests,
		Nights:        params.Stay.Nights,
		TotalPrice:    params.Stay.Total,
		PerNightPrice: params.Stay.PerNight,
		CreatedAt:     now.UTC(),
	}
	b.Record(BookingCreated{
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		UserID:     b.UserID,
		Range:      b.Range,
		Guests:     b.Guests,
		TotalPrice: b.TotalPrice,
		At:         b.CreatedAt,
	})
	return b, nil
}

// CheckCapacity compares each guest category with the listing caps.
func CheckCapacity(guests pricing.GuestCount, caps listings.Capacity) error {
	switch {
	case guests.Adults > caps.MaxAdults:
		return &CapacityError{Category: "adults", Limit: caps.MaxAdults}
	case guests.Kids > caps.MaxKids:
		return &CapacityError{Category: "kids", Limit: caps.MaxKids}
	case guests.Animals > caps.MaxAnimals:
		return &CapacityError{Category: "animals", Limit: caps.MaxAnimals}
	}
	return nil
}
