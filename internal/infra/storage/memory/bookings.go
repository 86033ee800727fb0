package memory

import (
	"context"
	"sort"

	domainbooking "stayhub/internal/domain/booking"
	"stayhub/internal/domain/shared/events"
	domainuser "stayhub/internal/domain/user"
)

type BookingRepository struct {
	store *Store
}

func (r *BookingRepository) Save(_ context.Context, b *domainbooking.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) ByID(_ context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) ListByUser(_ context.Context, userID domainuser.ID) ([]*domainbooking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.store.bookings {
		if b.UserID == userID {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *BookingRepository) Delete(_ context.Context, id domainbooking.ID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.bookings[id]; !ok {
		return domainbooking.ErrNotFound
	}
	delete(r.store.bookings, id)
	return nil
}

// Count is used by tests asserting side effects.
func (r *BookingRepository) Count() int {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.bookings)
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}
