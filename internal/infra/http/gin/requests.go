package ginserver

import (
	"strconv"
	"strings"
	"time"

	listingsapp "stayhub/internal/app/handlers/listings"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/fault"
)

var errPricesRequired = fault.New(fault.ErrInvalidInput, "invalid_input", "prices.adult, prices.kid, prices.animal and prices.housing are required")

type pricesRequest struct {
	Adult   *float64 `json:"adult"`
	Kid     *float64 `json:"kid"`
	Animal  *float64 `json:"animal"`
	Housing *float64 `json:"housing"`
}

func (p *pricesRequest) schedule() (pricing.RateSchedule, error) {
	if p == nil || p.Adult == nil || p.Kid == nil || p.Animal == nil || p.Housing == nil {
		return pricing.RateSchedule{}, errPricesRequired
	}
	return pricing.RateSchedule{Adult: *p.Adult, Kid: *p.Kid, Animal: *p.Animal, Base: *p.Housing}, nil
}

type dateRangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type activityRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type nearActivitiesRequest struct {
	Description string            `json:"description"`
	Activities  []activityRequest `json:"activities"`
}

func (n *nearActivitiesRequest) domain() domainlistings.NearActivities {
	if n == nil {
		return domainlistings.NearActivities{}
	}
	out := domainlistings.NearActivities{Description: n.Description}
	for _, a := range n.Activities {
		out.Activities = append(out.Activities, domainlistings.Activity{Name: a.Name, Location: a.Location})
	}
	return out
}

// listingRequest is shared by create and update; every field is optional at
// the binding level so update can tell absent from zero.
type listingRequest struct {
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	Location       *string                `json:"location"`
	Type           *string                `json:"type"`
	Place          *string                `json:"place"`
	MaxAdults      *int                   `json:"maxAdults"`
	MaxKids        *int                   `json:"maxKids"`
	MaxAnimals     *int                   `json:"maxAnimals"`
	Prices         *pricesRequest         `json:"prices"`
	AvailableDates *[]dateRangeRequest    `json:"availableDates"`
	NearActivities *nearActivitiesRequest `json:"nearActivities"`
	PetFriendly    *bool                  `json:"petFriendly"`
	Images         *[]string              `json:"images"`
	Rules          *[]string              `json:"rules"`
	Bedrooms       *int                   `json:"bedrooms"`
	Rooms          *int                   `json:"rooms"`
	Beds           *int                   `json:"beds"`
}

func (r listingRequest) fields() (listingsapp.ListingFields, error) {
	prices, err := r.Prices.schedule()
	if err != nil {
		return listingsapp.ListingFields{}, err
	}
	var ranges []daterange.DateRange
	if r.AvailableDates != nil {
		if ranges, err = parseRanges(*r.AvailableDates); err != nil {
			return listingsapp.ListingFields{}, err
		}
	}
	return listingsapp.ListingFields{
		Title:       str(r.Title),
		Description: str(r.Description),
		Location:    str(r.Location),
		Type:        str(r.Type),
		Place:       str(r.Place),
		Capacity: domainlistings.Capacity{
			MaxAdults:  num(r.MaxAdults),
			MaxKids:    num(r.MaxKids),
			MaxAnimals: num(r.MaxAnimals),
		},
		Prices:         prices,
		AvailableDates: ranges,
		NearActivities: r.NearActivities.domain(),
		PetFriendly:    r.PetFriendly != nil && *r.PetFriendly,
		Images:         strs(r.Images),
		Rules:          strs(r.Rules),
		Bedrooms:       num(r.Bedrooms),
		Rooms:          num(r.Rooms),
		Beds:           num(r.Beds),
	}, nil
}

func (r listingRequest) changes() (domainlistings.UpdateParams, error) {
	p := domainlistings.UpdateParams{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Type:        r.Type,
		Place:       r.Place,
		MaxAdults:   r.MaxAdults,
		MaxKids:     r.MaxKids,
		MaxAnimals:  r.MaxAnimals,
		PetFriendly: r.PetFriendly,
		Images:      r.Images,
		Rules:       r.Rules,
		Bedrooms:    r.Bedrooms,
		Rooms:       r.Rooms,
		Beds:        r.Beds,
	}
	if r.Prices != nil {
		prices, err := r.Prices.schedule()
		if err != nil {
			return p, err
		}
		p.Prices = &prices
	}
	if r.AvailableDates != nil {
		ranges, err := parseRanges(*r.AvailableDates)
		if err != nil {
			return p, err
		}
		p.AvailableDates = &ranges
	}
	if r.NearActivities != nil {
		na := r.NearActivities.domain()
		p.NearActivities = &na
	}
	return p, nil
}

func parseRanges(in []dateRangeRequest) ([]daterange.DateRange, error) {
	out := make([]daterange.DateRange, 0, len(in))
	for _, r := range in {
		start, err := parseDate(r.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(r.End)
		if err != nil {
			return nil, err
		}
		out = append(out, daterange.DateRange{Start: start, End: end})
	}
	return out, nil
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC).
// An empty value yields the zero time.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errInvalidDate
}

var (
	errInvalidCount      = fault.New(fault.ErrInvalidInput, "invalid_input", "maxAdults, maxKids and maxAnimals must be integers")
	errInvalidPriceRange = fault.New(fault.ErrInvalidInput, "invalid_input", "totalPrice must look like min-max")
	errInvalidBool       = fault.New(fault.ErrInvalidInput, "invalid_input", "petFriendly must be true or false")
)

// searchFilter reads the catalog query string. startDate and endDate only
// apply together.
func searchFilter(get func(string) string) (domainlistings.SearchFilter, error) {
	f := domainlistings.SearchFilter{
		Location: strings.TrimSpace(get("location")),
		Type:     strings.TrimSpace(get("type")),
		Place:    strings.TrimSpace(get("place")),
	}
	start, err := parseDate(get("startDate"))
	if err != nil {
		return f, err
	}
	end, err := parseDate(get("endDate"))
	if err != nil {
		return f, err
	}
	if !start.IsZero() && !end.IsZero() {
		f.Window = &daterange.DateRange{Start: start, End: end}
	}
	for _, field := range []struct {
		key string
		dst **int
	}{
		{"maxAdults", &f.MinAdults},
		{"maxKids", &f.MinKids},
		{"maxAnimals", &f.MinAnimals},
	} {
		raw := strings.TrimSpace(get(field.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, errInvalidCount
		}
		*field.dst = &n
	}
	if raw := strings.TrimSpace(get("totalPrice")); raw != "" {
		lo, hi, ok := strings.Cut(raw, "-")
		if !ok {
			return f, errInvalidPriceRange
		}
		minPrice, err1 := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		maxPrice, err2 := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err1 != nil || err2 != nil {
			return f, errInvalidPriceRange
		}
		f.Price = &domainlistings.PriceRange{Min: minPrice, Max: maxPrice}
	}
	if raw := strings.TrimSpace(get("petFriendly")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, errInvalidBool
		}
		f.PetFriendly = &b
	}
	for _, name := range strings.Split(get("nearActivities"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			f.Activities = append(f.Activities, name)
		}
	}
	return f, nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func num(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func strs(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}
