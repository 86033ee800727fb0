package memory

import (
	"context"
	"sort"

	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
)

type ListingRepository struct {
	store *Store
}

func (r *ListingRepository) ByID(_ context.Context, id domainlistings.ID) (*domainlistings.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	l, ok := r.store.listings[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(l), nil
}

// Save accepts a new listing at version 0 or an existing one whose version
// matches the stored copy.
func (r *ListingRepository) Save(_ context.Context, listing *domainlistings.Listing) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, exists := r.store.listings[listing.ID]
	switch {
	case exists && current.Version != listing.Version:
		return domainlistings.ErrConcurrentUpdate
	case !exists && listing.Version != 0:
		return domainlistings.ErrConcurrentUpdate
	}
	listing.Version++
	r.store.listings[listing.ID] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) Delete(_ context.Context, id domainlistings.ID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.listings[id]; !ok {
		return domainlistings.ErrNotFound
	}
	delete(r.store.listings, id)
	return nil
}

// Search applies filter.Matches and orders by creation time.
func (r *ListingRepository) Search(_ context.Context, filter domainlistings.SearchFilter) ([]*domainlistings.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domainlistings.Listing, 0)
	for _, l := range r.store.listings {
		if filter.Matches(l) {
			out = append(out, cloneListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	cp := *l
	cp.EventRecorder = events.EventRecorder{}
	if l.Coords != nil {
		c := *l.Coords
		cp.Coords = &c
	}
	cp.AvailableDates = append([]daterange.DateRange(nil), l.AvailableDates...)
	cp.Images = append([]string(nil), l.Images...)
	cp.Rules = append([]string(nil), l.Rules...)
	cp.NearActivities.Activities = make([]domainlistings.Activity, len(l.NearActivities.Activities))
	for i, a := range l.NearActivities.Activities {
		if a.Coords != nil {
			c := *a.Coords
			a.Coords = &c
		}
		cp.NearActivities.Activities[i] = a
	}
	return &cp
}
