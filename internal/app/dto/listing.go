package dto

import (
	"time"

	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
)

type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Prices struct {
	Adult   float64 `json:"adult"`
	Kid     float64 `json:"kid"`
	Animal  float64 `json:"animal"`
	Housing float64 `json:"housing"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Activity struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Coords   *Coords `json:"coords"`
}

type NearActivities struct {
	Description string     `json:"description"`
	Activities  []Activity `json:"activities"`
}

type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Listing struct {
	ID             string         `json:"id"`
	CreatedBy      string         `json:"createdBy"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Location       string         `json:"location"`
	Type           string         `json:"type"`
	Place          string         `json:"place"`
	Coords         *Coords        `json:"coords"`
	MaxAdults      int            `json:"maxAdults"`
	MaxKids        int            `json:"maxKids"`
	MaxAnimals     int            `json:"maxAnimals"`
	Prices         Prices         `json:"prices"`
	TotalPrice     float64        `json:"totalPrice"`
	AvailableDates []DateRange    `json:"availableDates"`
	IsAvailable    bool           `json:"isAvailable"`
	NearActivities NearActivities `json:"nearActivities"`
	PetFriendly    bool           `json:"petFriendly"`
	Images         []string       `json:"images"`
	Rules          []string       `json:"rules"`
	Bedrooms       int            `json:"bedrooms"`
	Rooms          int            `json:"rooms"`
	Beds           int            `json:"beds"`
	Rating         Rating         `json:"rating"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func MapListing(l *domainlistings.Listing) Listing {
	out := Listing{
		ID:             string(l.ID),
		CreatedBy:      string(l.CreatorID),
		Title:          l.Title,
		Description:    l.Description,
		Location:       l.Location,
		Type:           l.Type,
		Place:          l.Place,
		Coords:         mapCoords(l.Coords),
		MaxAdults:      l.Capacity.MaxAdults,
		MaxKids:        l.Capacity.MaxKids,
		MaxAnimals:     l.Capacity.MaxAnimals,
		Prices:         MapPrices(l.Prices),
		TotalPrice:     l.TotalPrice,
		AvailableDates: MapRanges(l.AvailableDates),
		IsAvailable:    l.IsAvailable,
		NearActivities: NearActivities{Description: l.NearActivities.Description, Activities: []Activity{}},
		PetFriendly:    l.PetFriendly,
		Images:         nonNil(l.Images),
		Rules:          nonNil(l.Rules),
		Bedrooms:       l.Bedrooms,
		Rooms:          l.Rooms,
		Beds:           l.Beds,
		Rating:         Rating{Average: l.Rating.Average, Count: l.Rating.Count},
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
	for _, a := range l.NearActivities.Activities {
		out.NearActivities.Activities = append(out.NearActivities.Activities, Activity{
			Name:     a.Name,
			Location: a.Location,
			Coords:   mapCoords(a.Coords),
		})
	}
	return out
}

func MapListings(items []*domainlistings.Listing) []Listing {
	out := make([]Listing, 0, len(items))
	for _, l := range items {
		out = append(out, MapListing(l))
	}
	return out
}

func MapPrices(r pricing.RateSchedule) Prices {
	return Prices{Adult: r.Adult, Kid: r.Kid, Animal: r.Animal, Housing: r.Base}
}

func MapRanges(ranges []daterange.DateRange) []DateRange {
	out := make([]DateRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, DateRange{Start: r.Start, End: r.End})
	}
	return out
}

func mapCoords(c *domainlistings.Coords) *Coords {
	if c == nil {
		return nil
	}
	return &Coords{Lat: c.Lat, Lon: c.Lon}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
