package listings

import (
	"strings"
	"time"

	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
)

// UpdateParams is a partial update. Nil fields are left untouched; present
// fields get the same checks as on creation.
type UpdateParams struct {
	Title          *string
	Description    *string
	Location       *string
	Type           *string
	Place          *string
	MaxAdults      *int
	MaxKids        *int
	MaxAnimals     *int
	Prices         *pricing.RateSchedule
	AvailableDates *[]daterange.DateRange
	NearActivities *NearActivities
	PetFriendly    *bool
	Images         *[]string
	Rules          *[]string
	Bedrooms       *int
	Rooms          *int
	Beds           *int
	Now            time.Time
}

// LocationChanged reports whether applying p would move the listing.
func (p UpdateParams) LocationChanged(current string) bool {
	return p.Location != nil && strings.TrimSpace(*p.Location) != current
}

// Validate runs the per-field checks for every present field.
func (p UpdateParams) Validate() error {
	for _, check := range []struct {
		value *string
		err   error
	}{
		{p.Title, ErrTitleRequired},
		{p.Description, ErrDescriptionRequired},
		{p.Location, ErrLocationRequired},
		{p.Type, ErrTypeRequired},
		{p.Place, ErrPlaceRequired},
	} {
		if check.value != nil && strings.TrimSpace(*check.value) == "" {
			return check.err
		}
	}
	if p.MaxAdults != nil && *p.MaxAdults < 1 {
		return ErrMaxAdults
	}
	if (p.MaxKids != nil && *p.MaxKids < 0) || (p.MaxAnimals != nil && *p.MaxAnimals < 0) {
		return ErrNegativeCapacity
	}
	for _, n := range []*int{p.Bedrooms, p.Rooms, p.Beds} {
		if n != nil && *n < 0 {
			return ErrNegativeRooms
		}
	}
	if p.Prices != nil {
		if err := p.Prices.Validate(); err != nil {
			return err
		}
	}
	if p.AvailableDates != nil {
		if err := validateAvailability(*p.AvailableDates); err != nil {
			return err
		}
	}
	if p.NearActivities != nil {
		if err := validateActivities(*p.NearActivities); err != nil {
			return err
		}
	}
	return nil
}

// ApplyUpdate validates and applies p. coords replaces the geocoded position
// and is only consulted when the location changes.
func (l *Listing) ApplyUpdate(p UpdateParams, coords *Coords) error {
	if err := p.Validate(); err != nil {
		return err
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	var changed []string
	setString := func(field string, dst *string, src *string) {
		if src == nil {
			return
		}
		*dst = strings.TrimSpace(*src)
		changed = append(changed, field)
	}
	setInt := func(field string, dst *int, src *int) {
		if src == nil {
			return
		}
		*dst = *src
		changed = append(changed, field)
	}

	if p.LocationChanged(l.Location) {
		l.Coords = coords
	}
	setString("title", &l.Title, p.Title)
	setString("description", &l.Description, p.Description)
	setString("location", &l.Location, p.Location)
	setString("type", &l.Type, p.Type)
	setString("place", &l.Place, p.Place)
	setInt("bedrooms", &l.Bedrooms, p.Bedrooms)
	setInt("rooms", &l.Rooms, p.Rooms)
	setInt("beds", &l.Beds, p.Beds)
	setInt("maxAdults", &l.Capacity.MaxAdults, p.MaxAdults)
	setInt("maxKids", &l.Capacity.MaxKids, p.MaxKids)
	setInt("maxAnimals", &l.Capacity.MaxAnimals, p.MaxAnimals)
	if p.Prices != nil {
		l.Prices = *p.Prices
		l.TotalPrice = p.Prices.Nominal()
		changed = append(changed, "prices")
	}
	if p.AvailableDates != nil {
		l.AvailableDates = daterange.Normalize(*p.AvailableDates)
		l.IsAvailable = len(l.AvailableDates) > 0
		changed = append(changed, "availableDates")
	}
	if p.NearActivities != nil {
		l.NearActivities = cloneActivities(*p.NearActivities)
		changed = append(changed, "nearActivities")
	}
	if p.PetFriendly != nil {
		l.PetFriendly = *p.PetFriendly
		changed = append(changed, "petFriendly")
	}
	if p.Images != nil {
		l.Images = append([]string(nil), (*p.Images)...)
		changed = append(changed, "images")
	}
	if p.Rules != nil {
		l.Rules = append([]string(nil), (*p.Rules)...)
		changed = append(changed, "rules")
	}
	if len(changed) == 0 {
		return nil
	}
	l.UpdatedAt = now
	l.Record(ListingUpdatedEvent{ListingID: l.ID, Fields: changed, At: now})
	return nil
}
