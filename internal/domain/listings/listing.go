package listings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/domain/availability"
	"stayhub/internal/domain/auth"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/events"
	"stayhub/internal/domain/shared/fault"
	"stayhub/internal/domain/user"
)

func invalid(msg string) *fault.Error {
	return fault.New(fault.ErrInvalidInput, "invalid_input", msg)
}

var (
	ErrIDRequired           = invalid("listings: id is required")
	ErrCreatorRequired      = invalid("listings: creator is required")
	ErrTitleRequired        = invalid("listings: title is required")
	ErrDescriptionRequired  = invalid("listings: description is required")
	ErrLocationRequired     = invalid("listings: location is required")
	ErrTypeRequired         = invalid("listings: type is required")
	ErrPlaceRequired        = invalid("listings: place is required")
	ErrMaxAdults            = invalid("listings: maxAdults must be at least 1")
	ErrNegativeCapacity     = invalid("listings: maxKids and maxAnimals must be non-negative")
	ErrNegativeRooms        = invalid("listings: bedrooms, rooms and beds must be non-negative")
	ErrAvailabilityRequired = invalid("listings: availableDates must contain at least one range")
	ErrInvalidAvailability  = invalid("listings: each available date range must have start before end")
	ErrActivitiesDesc       = invalid("listings: nearActivities.description is required")
	ErrActivitiesRequired   = invalid("listings: nearActivities.activities must contain at least one activity")
	ErrActivityInvalid      = invalid("listings: each activity needs a name and a location")
	ErrInvalidID            = fault.New(fault.ErrInvalidInput, "invalid_id", "listings: invalid id")
	ErrInvalidLocation      = fault.New(fault.ErrInvalidInput, "invalid_location", "listings: invalid housing location")
	ErrNotFound             = fault.New(fault.ErrNotFound, "listing_not_found", "listings: housing not found")
	ErrNotOwner             = fault.New(fault.ErrForbidden, "forbidden", "listings: only the owner may modify this housing")
	ErrConcurrentUpdate     = fault.New(fault.ErrConflict, "conflict", "listings: housing was modified concurrently, retry")
)

type ID string

// ParseID validates a client-supplied listing id.
func ParseID(raw string) (ID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidID
	}
	return ID(parsed.String()), nil
}

// CanonicalID is the hyphenated lower-case form of raw, so every spelling
// uuid.Parse accepts names the same listing. Unparseable input comes back
// trimmed and lower-cased.
func CanonicalID(raw string) string {
	if id, err := ParseID(raw); err == nil {
		return string(id)
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

type Coords struct {
	Lat float64
	Lon float64
}

type Activity struct {
	Name     string
	Location string
	Coords   *Coords
}

type NearActivities struct {
	Description string
	Activities  []Activity
}

type Rating struct {
	Average float64
	Count   int
}

type Capacity struct {
	MaxAdults  int
	MaxKids    int
	MaxAnimals int
}

type Listing struct {
	ID             ID
	CreatorID      user.ID
	Title          string
	Description    string
	Location       string
	Type           string
	Place          string
	Coords         *Coords
	Capacity       Capacity
	Prices         pricing.RateSchedule
	TotalPrice     float64
	AvailableDates []daterange.DateRange
	IsAvailable    bool
	NearActivities NearActivities
	PetFriendly    bool
	Images         []string
	Rules          []string
	Bedrooms       int
	Rooms          int
	Beds           int
	Rating         Rating
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Listing, error)
	// Save persists the listing if its stored version still equals
	// listing.Version and bumps the version; ErrConcurrentUpdate otherwise.
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ID) error
	Search(ctx context.Context, filter SearchFilter) ([]*Listing, error)
}

type CreateParams struct {
	ID             ID
	CreatorID      user.ID
	Title          string
	Description    string
	Location       string
	Type           string
	Place          string
	Coords         *Coords
	Capacity       Capacity
	Prices         pricing.RateSchedule
	AvailableDates []daterange.DateRange
	NearActivities NearActivities
	PetFriendly    bool
	Images         []string
	Rules          []string
	Bedrooms       int
	Rooms          int
	Beds           int
	Now            time.Time
}

// ValidateCreate checks a creation request before any external lookup runs.
func ValidateCreate(params CreateParams) error {
	for _, check := range []struct {
		value string
		err   error
	}{
		{params.Title, ErrTitleRequired},
		{params.Description, ErrDescriptionRequired},
		{params.Location, ErrLocationRequired},
		{params.Type, ErrTypeRequired},
		{params.Place, ErrPlaceRequired},
	} {
		if strings.TrimSpace(check.value) == "" {
			return check.err
		}
	}
	if err := validateCapacity(params.Capacity); err != nil {
		return err
	}
	if params.Bedrooms < 0 || params.Rooms < 0 || params.Beds < 0 {
		return ErrNegativeRooms
	}
	if err := params.Prices.Validate(); err != nil {
		return err
	}
	if err := validateAvailability(params.AvailableDates); err != nil {
		return err
	}
	return validateActivities(params.NearActivities)
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.CreatorID)) == "" {
		return nil, ErrCreatorRequired
	}
	if err := ValidateCreate(params); err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	ranges := daterange.Normalize(params.AvailableDates)

	listing := &Listing{
		ID:             params.ID,
		CreatorID:      params.CreatorID,
		Title:          strings.TrimSpace(params.Title),
		Description:    strings.TrimSpace(params.Description),
		Location:       strings.TrimSpace(params.Location),
		Type:           strings.TrimSpace(params.Type),
		Place:          strings.TrimSpace(params.Place),
		Coords:         params.Coords,
		Capacity:       params.Capacity,
		Prices:         params.Prices,
		TotalPrice:     params.Prices.Nominal(),
		AvailableDates: ranges,
		IsAvailable:    len(ranges) > 0,
		NearActivities: cloneActivities(params.NearActivities),
		PetFriendly:    params.PetFriendly,
		Images:         append([]string(nil), params.Images...),
		Rules:          append([]string(nil), params.Rules...),
		Bedrooms:       params.Bedrooms,
		Rooms:          params.Rooms,
		Beds:           params.Beds,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	listing.Record(ListingCreatedEvent{ListingID: listing.ID, CreatorID: listing.CreatorID, At: now})
	return listing, nil
}

// EnsureOwner gates every owner-only mutation.
func (l *Listing) EnsureOwner(actor *auth.Actor) error {
	if err := auth.Require(actor); err != nil {
		return err
	}
	if actor.ID != l.CreatorID {
		return ErrNotOwner
	}
	return nil
}

// EnsureCanDelete allows the owner or an admin.
func (l *Listing) EnsureCanDelete(actor *auth.Actor) error {
	if err := auth.Require(actor); err != nil {
		return err
	}
	if actor.ID != l.CreatorID && !actor.IsAdmin() {
		return ErrNotOwner
	}
	return nil
}

// MarkDeleted records the deletion event; removal itself is done by the repository.
func (l *Listing) MarkDeleted(by user.ID, now time.Time) {
	l.Record(ListingDeletedEvent{ListingID: l.ID, DeletedBy: by, At: now.UTC()})
}

func (l *Listing) Ledger() availability.Ledger {
	return availability.NewLedger(l.AvailableDates)
}

// ConsumeAvailability removes a booked stay from the open dates and hides the
// listing once nothing is left.
func (l *Listing) ConsumeAvailability(stay daterange.DateRange, bookingID string, now time.Time) (availability.Consumption, error) {
	res, err := l.Ledger().Consume(stay)
	if err != nil {
		return availability.Consumption{}, err
	}
	l.AvailableDates = res.Remaining
	l.IsAvailable = !res.Exhausted()
	l.UpdatedAt = now.UTC()
	l.Record(availability.ConsumedEvent(string(l.ID), bookingID, res, now))
	if res.Exhausted() {
		l.Record(availability.ExhaustedEvent(string(l.ID), now))
	}
	return res, nil
}

func (l *Listing) AppendImage(url string, now time.Time) {
	l.Images = append(l.Images, url)
	l.UpdatedAt = now.UTC()
}

func validateCapacity(c Capacity) error {
	if c.MaxAdults < 1 {
		return ErrMaxAdults
	}
	if c.MaxKids < 0 || c.MaxAnimals < 0 {
		return ErrNegativeCapacity
	}
	return nil
}

// Raw instants are compared here; calendar-day truncation applies to bookings only.
func validateAvailability(ranges []daterange.DateRange) error {
	if len(ranges) == 0 {
		return ErrAvailabilityRequired
	}
	for _, r := range ranges {
		if r.Validate() != nil {
			return ErrInvalidAvailability
		}
	}
	return nil
}

func validateActivities(na NearActivities) error {
	if strings.TrimSpace(na.Description) == "" {
		return ErrActivitiesDesc
	}
	if len(na.Activities) == 0 {
		return ErrActivitiesRequired
	}
	for _, a := range na.Activities {
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Location) == "" {
			return ErrActivityInvalid
		}
	}
	return nil
}

func cloneActivities(na NearActivities) NearActivities {
	out := NearActivities{Description: strings.TrimSpace(na.Description)}
	for _, a := range na.Activities {
		act := Activity{Name: strings.TrimSpace(a.Name), Location: strings.TrimSpace(a.Location)}
		if a.Coords != nil {
			c := *a.Coords
			act.Coords = &c
		}
		out.Activities = append(out.Activities, act)
	}
	return out
}
