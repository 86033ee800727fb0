package listings

import (
	"strings"

	"stayhub/internal/domain/shared/daterange"
)

// PriceRange bounds the nominal totalPrice, both ends inclusive.
type PriceRange struct {
	Min float64
	Max float64
}

// SearchFilter lists the supported catalog filters. Zero values mean "no filter".
// Only available listings are ever returned.
type SearchFilter struct {
	// Location matches as a case-insensitive substring.
	Location    string
	Window      *daterange.DateRange
	MinAdults   *int
	MinKids     *int
	MinAnimals  *int
	Price       *PriceRange
	Type        string
	Place       string
	PetFriendly *bool
	// Activities must all be present among the listing's near activities.
	Activities []string
}

// Matches is the reference semantics for every repository implementation.
func (f SearchFilter) Matches(l *Listing) bool {
	if l == nil || !l.IsAvailable {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.Window != nil && !l.Ledger().AnyOverlap(*f.Window) {
		return false
	}
	if f.MinAdults != nil && l.Capacity.MaxAdults < *f.MinAdults {
		return false
	}
	if f.MinKids != nil && l.Capacity.MaxKids < *f.MinKids {
		return false
	}
	if f.MinAnimals != nil && l.Capacity.MaxAnimals < *f.MinAnimals {
		return false
	}
	if f.Price != nil && (l.TotalPrice < f.Price.Min || l.TotalPrice > f.Price.Max) {
		return false
	}
	if f.Type != "" && l.Type != f.Type {
		return false
	}
	if f.Place != "" && l.Place != f.Place {
		return false
	}
	if f.PetFriendly != nil && l.PetFriendly != *f.PetFriendly {
		return false
	}
	for _, want := range f.Activities {
		if !l.hasActivity(want) {
			return false
		}
	}
	return true
}

func (l *Listing) hasActivity(name string) bool {
	for _, a := range l.NearActivities.Activities {
		if a.Name == name {
			return true
		}
	}
	return false
}
