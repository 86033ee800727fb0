package availability

import (
	"time"

	"stayhub/internal/domain/shared/daterange"
)

type Consumed struct {
	ListingID string              `json:"listing_id"`
	BookingID string              `json:"booking_id"`
	Range     daterange.DateRange `json:"range"`
	Remaining int                 `json:"remaining_ranges"`
	At        time.Time           `json:"at"`
}

func (e Consumed) EventName() string     { return "availability.consumed" }
func (e Consumed) AggregateID() string   { return e.ListingID }
func (e Consumed) OccurredAt() time.Time { return e.At }

type Exhausted struct {
	ListingID string    `json:"listing_id"`
	At        time.Time `json:"at"`
}

func (e Exhausted) EventName() string     { return "listing.sold_out" }
func (e Exhausted) AggregateID() string   { return e.ListingID }
func (e Exhausted) OccurredAt() time.Time { return e.At }

func ConsumedEvent(listingID, bookingID string, c Consumption, at time.Time) Consumed {
	return Consumed{ListingID: listingID, BookingID: bookingID, Range: c.Consumed, Remaining: len(c.Remaining), At: at.UTC()}
}

func ExhaustedEvent(listingID string, at time.Time) Exhausted {
	return Exhausted{ListingID: listingID, At: at.UTC()}
}
