package memory

import (
	"sync"

	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

// Store holds every collection of a local or test process. Repositories
// hand out copies, so callers never share aggregates through it.
type Store struct {
	mu       sync.RWMutex
	listings map[domainlistings.ID]*domainlistings.Listing
	bookings map[domainbooking.ID]*domainbooking.Booking
	users    map[domainuser.ID]*domainuser.User
}

func NewStore() *Store {
	return &Store{
		listings: make(map[domainlistings.ID]*domainlistings.Listing),
		bookings: make(map[domainbooking.ID]*domainbooking.Booking),
		users:    make(map[domainuser.ID]*domainuser.User),
	}
}

func (s *Store) Listings() *ListingRepository { return &ListingRepository{store: s} }

func (s *Store) Bookings() *BookingRepository { return &BookingRepository{store: s} }

func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }
