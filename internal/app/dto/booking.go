package dto

import (
	"time"

	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

type Guests struct {
	Adults  int `json:"adults"`
	Kids    int `json:"kids"`
	Animals int `json:"animals"`
}

type Booking struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	HousingID     string    `json:"housingId"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	Guests        Guests    `json:"guests"`
	TotalPrice    float64   `json:"totalPrice"`
	PerNightPrice float64   `json:"perNightPrice"`
	CreatedAt     time.Time `json:"createdAt"`
}

// BookingUser is the user part of a populated booking.
type BookingUser struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	Email     string `json:"email"`
}

type BookingHousingSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Location string `json:"location"`
}

// BookingSummary is one entry of the caller's own booking list.
type BookingSummary struct {
	Booking
	User    *BookingUser           `json:"user"`
	Housing *BookingHousingSummary `json:"housing"`
}

// BookingDetails is a fully populated booking.
type BookingDetails struct {
	Booking
	User    *BookingUser `json:"user"`
	Housing *Listing     `json:"housing"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	return Booking{
		ID:            string(b.ID),
		UserID:        string(b.UserID),
		HousingID:     string(b.ListingID),
		StartDate:     b.Range.Start,
		EndDate:       b.Range.End,
		Guests:        Guests{Adults: b.Guests.Adults, Kids: b.Guests.Kids, Animals: b.Guests.Animals},
		TotalPrice:    b.TotalPrice,
		PerNightPrice: b.PerNightPrice,
		CreatedAt:     b.CreatedAt,
	}
}

func MapBookingSummary(b *domainbooking.Booking, u *domainuser.User, l *domainlistings.Listing) BookingSummary {
	out := BookingSummary{Booking: MapBooking(b)}
	if u != nil {
		out.User = &BookingUser{ID: string(u.ID), Email: u.Email}
	}
	if l != nil {
		out.Housing = &BookingHousingSummary{ID: string(l.ID), Title: l.Title, Location: l.Location}
	}
	return out
}

func MapBookingDetails(b *domainbooking.Booking, u *domainuser.User, l *domainlistings.Listing) BookingDetails {
	out := BookingDetails{Booking: MapBooking(b)}
	if u != nil {
		out.User = &BookingUser{ID: string(u.ID), Firstname: u.Firstname, Lastname: u.Lastname, Email: u.Email}
	}
	if l != nil {
		listing := MapListing(l)
		out.Housing = &listing
	}
	return out
}
