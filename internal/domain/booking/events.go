package booking

import (
	"time"

	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/user"
)

type BookingCreated struct {
	BookingID  ID                  `json:"booking_id"`
	ListingID  listings.ID         `json:"listing_id"`
	UserID     user.ID             `json:"user_id"`
	Range      daterange.DateRange `json:"range"`
	Guests     pricing.GuestCount  `json:"guests"`
	TotalPrice float64             `json:"total_price"`
	At         time.Time           `json:"at"`
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }
