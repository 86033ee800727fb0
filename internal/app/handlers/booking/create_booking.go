package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
	"stayhub/internal/domain/shared/fault"
)

const CreateBookingKey = "booking.create"

var (
	ErrHousingRequired = fault.New(fault.ErrInvalidInput, "invalid_input", "booking: housingId is required")
	ErrDatesRequired   = fault.New(fault.ErrInvalidInput, "invalid_input", "booking: startDate and endDate are required")
	ErrGuestsRequired  = fault.New(fault.ErrInvalidInput, "invalid_input", "booking: guests.adults, guests.kids and guests.animals are required")
	ErrGuestsNegative  = fault.New(fault.ErrInvalidInput, "invalid_input", "booking: guest counts must be non-negative integers")
)

// GuestsInput keeps presence information: a nil field was not sent.
type GuestsInput struct {
	Adults  *int
	Kids    *int
	Animals *int
}

type CreateBookingCommand struct {
	ActingUser      *auth.Actor
	HousingID       string
	StartDate       time.Time
	EndDate         time.Time
	Guests          GuestsInput
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return CreateBookingKey }

func (c CreateBookingCommand) Actor() *auth.Actor { return c.ActingUser }

func (c CreateBookingCommand) LockKey() string {
	return domainlistings.CanonicalID(c.HousingID)
}

func (c CreateBookingCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV == "" || c.ActingUser == nil {
		return ""
	}
	return CreateBookingKey + ":" + string(c.ActingUser.ID) + ":" + c.IdempotencyKeyV
}

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	Booking       dto.Booking `json:"booking"`
	Nights        int         `json:"nights"`
	PerNightPrice float64     `json:"perNightPrice"`
}

// CreateBookingHandler validates a stay against a listing, prices it, stores
// the booking and removes the stay from the listing's open dates. Both writes
// share one unit of work; a failed listing write also deletes the booking.
type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	if err := auth.Require(cmd.ActingUser); err != nil {
		return nil, err
	}
	guests, err := validateRequest(cmd)
	if err != nil {
		return nil, err
	}
	listingID, err := domainlistings.ParseID(cmd.HousingID)
	if err != nil {
		return nil, err
	}

	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
	}

	listing, err := unit.Listings().ByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := domainbooking.CheckCapacity(guests, listing.Capacity); err != nil {
		return nil, err
	}
	stay := daterange.DateRange{Start: cmd.StartDate.UTC(), End: cmd.EndDate.UTC()}
	nights := stay.Nights()
	if nights < 1 {
		return nil, domainbooking.ErrInvalidDateRange
	}
	if !listing.Ledger().IsFullyAvailable(stay) {
		return nil, domainbooking.ErrDatesUnavailable
	}
	quote, err := pricing.ComputeStay(listing.Prices, guests, nights)
	if err != nil {
		return nil, err
	}

	now := h.now()
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.NewID(),
		UserID:    cmd.ActingUser.ID,
		ListingID: listing.ID,
		Range:     stay.Truncate(),
		Guests:    guests,
		Stay:      quote,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}

	if _, err := listing.ConsumeAvailability(stay, string(b.ID), now); err != nil {
		h.compensate(ctx, unit, b.ID, err)
		return nil, domainbooking.ErrDatesUnavailable
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		h.compensate(ctx, unit, b.ID, err)
		return nil, err
	}

	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), events.Collect(b, listing)); err != nil {
		return nil, err
	}
	if release != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "booking created",
			"booking_id", b.ID,
			"listing_id", listing.ID,
			"nights", nights,
			"listing_available", listing.IsAvailable,
		)
	}
	return &CreateBookingResult{
		Booking:       dto.MapBooking(b),
		Nights:        nights,
		PerNightPrice: quote.PerNight,
	}, nil
}

func validateRequest(cmd CreateBookingCommand) (pricing.GuestCount, error) {
	if strings.TrimSpace(cmd.HousingID) == "" {
		return pricing.GuestCount{}, ErrHousingRequired
	}
	if cmd.StartDate.IsZero() || cmd.EndDate.IsZero() {
		return pricing.GuestCount{}, ErrDatesRequired
	}
	g := cmd.Guests
	if g.Adults == nil || g.Kids == nil || g.Animals == nil {
		return pricing.GuestCount{}, ErrGuestsRequired
	}
	guests := pricing.GuestCount{Adults: *g.Adults, Kids: *g.Kids, Animals: *g.Animals}
	if guests.Validate() != nil {
		return pricing.GuestCount{}, ErrGuestsNegative
	}
	return guests, nil
}

// compensate removes a booking whose availability write did not go through.
func (h *CreateBookingHandler) compensate(ctx context.Context, unit uow.UnitOfWork, id domainbooking.ID, cause error) {
	err := unit.Bookings().Delete(ctx, id)
	if h.Logger == nil {
		return
	}
	if err != nil && !errors.Is(err, domainbooking.ErrNotFound) {
		h.Logger.ErrorContext(ctx, "booking compensation failed", "booking_id", id, "cause", cause, "error", err)
		return
	}
	h.Logger.WarnContext(ctx, "booking compensated", "booking_id", id, "cause", cause)
}

func (h *CreateBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = CreateBookingCommand{}
var _ middleware.SerializedCommand = CreateBookingCommand{}
var _ middleware.ActorCommand = CreateBookingCommand{}
