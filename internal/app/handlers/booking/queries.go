package booking

import (
	"context"
	"errors"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

const (
	ListMyBookingsKey = "booking.list_mine"
	GetBookingKey     = "booking.get"
)

type ListMyBookingsQuery struct {
	ActingUser *auth.Actor
}

func (ListMyBookingsQuery) Key() string { return ListMyBookingsKey }

type ListMyBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListMyBookingsHandler) Handle(ctx context.Context, q ListMyBookingsQuery) ([]dto.BookingSummary, error) {
	if err := auth.Require(q.ActingUser); err != nil {
		return nil, err
	}
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
	}

	bookings, err := unit.Bookings().ListByUser(ctx, q.ActingUser.ID)
	if err != nil {
		return nil, err
	}
	booker, err := optionalUser(ctx, unit.Users(), q.ActingUser.ID)
	if err != nil {
		return nil, err
	}
	seen := make(map[domainlistings.ID]*domainlistings.Listing)
	out := make([]dto.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		l, ok := seen[b.ListingID]
		if !ok {
			if l, err = optionalListing(ctx, unit.Listings(), b.ListingID); err != nil {
				return nil, err
			}
			seen[b.ListingID] = l
		}
		out = append(out, dto.MapBookingSummary(b, booker, l))
	}
	return out, nil
}

type GetBookingQuery struct {
	ActingUser *auth.Actor
	BookingID  string
}

func (GetBookingQuery) Key() string { return GetBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (*dto.BookingDetails, error) {
	if err := auth.Require(q.ActingUser); err != nil {
		return nil, err
	}
	id, err := domainbooking.ParseID(q.BookingID)
	if err != nil {
		return nil, err
	}
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
	}

	b, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != q.ActingUser.ID && !q.ActingUser.IsAdmin() {
		return nil, domainbooking.ErrNotBooker
	}
	booker, err := optionalUser(ctx, unit.Users(), b.UserID)
	if err != nil {
		return nil, err
	}
	l, err := optionalListing(ctx, unit.Listings(), b.ListingID)
	if err != nil {
		return nil, err
	}
	details := dto.MapBookingDetails(b, booker, l)
	return &details, nil
}

// Populated fields stay null when the referenced document is gone.
func optionalUser(ctx context.Context, repo domainuser.Repository, id domainuser.ID) (*domainuser.User, error) {
	u, err := repo.ByID(ctx, id)
	if errors.Is(err, domainuser.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func optionalListing(ctx context.Context, repo domainlistings.Repository, id domainlistings.ID) (*domainlistings.Listing, error) {
	l, err := repo.ByID(ctx, id)
	if errors.Is(err, domainlistings.ErrNotFound) {
		return nil, nil
	}
	return l, err
}

var (
	_ queries.Handler[ListMyBookingsQuery, []dto.BookingSummary] = (*ListMyBookingsHandler)(nil)
	_ queries.Handler[GetBookingQuery, *dto.BookingDetails]      = (*GetBookingHandler)(nil)
)
