package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/user"
)

const (
	colUsers    = "users"
	colListings = "housings"
	colBookings = "bookings"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(colListings)}
}

func listingIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_available", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "creator_id", Value: 1}}},
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save inserts version-0 listings and otherwise replaces the stored document
// only while its version still matches.
func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	doc.Version = l.Version + 1
	if l.Version == 0 {
		if _, err := r.col.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domainlistings.ErrConcurrentUpdate
			}
			return asConflict(err)
		}
		l.Version = doc.Version
		return nil
	}
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": l.Version}, doc)
	if err != nil {
		return asConflict(err)
	}
	if res.MatchedCount == 0 {
		return domainlistings.ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

// Search narrows candidates in the database and applies filter.Matches to
// what comes back, so both stores agree on the result set.
func (r *ListingRepository) Search(ctx context.Context, filter domainlistings.SearchFilter) ([]*domainlistings.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, searchQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]*domainlistings.Listing, 0)
	for cur.Next(ctx) {
		var doc listingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		l := doc.toAggregate()
		if filter.Matches(l) {
			out = append(out, l)
		}
	}
	return out, cur.Err()
}

type coordsDocument struct {
	Lat float64 `bson:"lat"`
	Lon float64 `bson:"lon"`
}

type activityDocument struct {
	Name     string          `bson:"name"`
	Location string          `bson:"location"`
	Coords   *coordsDocument `bson:"coords,omitempty"`
}

type rangeDocument struct {
	Start time.Time `bson:"start"`
	End   time.Time `bson:"end"`
}

type listingDocument struct {
	ID          string          `bson:"_id"`
	CreatorID   string          `bson:"creator_id"`
	Title       string          `bson:"title"`
	Description string          `bson:"description"`
	Location    string          `bson:"location"`
	Type        string          `bson:"type"`
	Place       string          `bson:"place"`
	Coords      *coordsDocument `bson:"coords,omitempty"`
	MaxAdults   int             `bson:"max_adults"`
	MaxKids     int             `bson:"max_kids"`
	MaxAnimals  int             `bson:"max_animals"`
	Prices      struct {
		Adult  float64 `bson:"adult"`
		Kid    float64 `bson:"kid"`
		Animal float64 `bson:"animal"`
		Base   float64 `bson:"housing"`
	} `bson:"prices"`
	TotalPrice     float64            `bson:"total_price"`
	AvailableDates []rangeDocument    `bson:"available_dates"`
	IsAvailable    bool               `bson:"is_available"`
	ActivitiesDesc string             `bson:"activities_description"`
	Activities     []activityDocument `bson:"activities"`
	PetFriendly    bool               `bson:"pet_friendly"`
	Images         []string           `bson:"images"`
	Rules          []string           `bson:"rules"`
	Bedrooms       int                `bson:"bedrooms"`
	Rooms          int                `bson:"rooms"`
	Beds           int                `bson:"beds"`
	RatingAverage  float64            `bson:"rating_average"`
	RatingCount    int                `bson:"rating_count"`
	Version        int64              `bson:"version"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	doc := listingDocument{
		ID:             string(l.ID),
		CreatorID:      string(l.CreatorID),
		Title:          l.Title,
		Description:    l.Description,
		Location:       l.Location,
		Type:           l.Type,
		Place:          l.Place,
		Coords:         toCoordsDocument(l.Coords),
		MaxAdults:      l.Capacity.MaxAdults,
		MaxKids:        l.Capacity.MaxKids,
		MaxAnimals:     l.Capacity.MaxAnimals,
		TotalPrice:     l.TotalPrice,
		IsAvailable:    l.IsAvailable,
		ActivitiesDesc: l.NearActivities.Description,
		PetFriendly:    l.PetFriendly,
		Images:         append([]string{}, l.Images...),
		Rules:          append([]string{}, l.Rules...),
		Bedrooms:       l.Bedrooms,
		Rooms:          l.Rooms,
		Beds:           l.Beds,
		RatingAverage:  l.Rating.Average,
		RatingCount:    l.Rating.Count,
		Version:        l.Version,
		CreatedAt:      l.CreatedAt.UTC(),
		UpdatedAt:      l.UpdatedAt.UTC(),
	}
	doc.Prices.Adult = l.Prices.Adult
	doc.Prices.Kid = l.Prices.Kid
	doc.Prices.Animal = l.Prices.Animal
	doc.Prices.Base = l.Prices.Base
	doc.AvailableDates = make([]rangeDocument, 0, len(l.AvailableDates))
	for _, r := range l.AvailableDates {
		doc.AvailableDates = append(doc.AvailableDates, rangeDocument{Start: r.Start.UTC(), End: r.End.UTC()})
	}
	doc.Activities = make([]activityDocument, 0, len(l.NearActivities.Activities))
	for _, a := range l.NearActivities.Activities {
		doc.Activities = append(doc.Activities, activityDocument{Name: a.Name, Location: a.Location, Coords: toCoordsDocument(a.Coords)})
	}
	return doc
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	l := &domainlistings.Listing{
		ID:          domainlistings.ID(d.ID),
		CreatorID:   user.ID(d.CreatorID),
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		Type:        d.Type,
		Place:       d.Place,
		Coords:      d.Coords.toDomain(),
		Capacity: domainlistings.Capacity{
			MaxAdults:  d.MaxAdults,
			MaxKids:    d.MaxKids,
			MaxAnimals: d.MaxAnimals,
		},
		Prices: pricing.RateSchedule{
			Adult:  d.Prices.Adult,
			Kid:    d.Prices.Kid,
			Animal: d.Prices.Animal,
			Base:   d.Prices.Base,
		},
		TotalPrice:     d.TotalPrice,
		IsAvailable:    d.IsAvailable,
		NearActivities: domainlistings.NearActivities{Description: d.ActivitiesDesc},
		PetFriendly:    d.PetFriendly,
		Images:         d.Images,
		Rules:          d.Rules,
		Bedrooms:       d.Bedrooms,
		Rooms:          d.Rooms,
		Beds:           d.Beds,
		Rating:         domainlistings.Rating{Average: d.RatingAverage, Count: d.RatingCount},
		Version:        d.Version,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
	for _, r := range d.AvailableDates {
		l.AvailableDates = append(l.AvailableDates, daterange.DateRange{Start: r.Start.UTC(), End: r.End.UTC()})
	}
	for _, a := range d.Activities {
		l.NearActivities.Activities = append(l.NearActivities.Activities, domainlistings.Activity{
			Name:     a.Name,
			Location: a.Location,
			Coords:   a.Coords.toDomain(),
		})
	}
	return l
}

func toCoordsDocument(c *domainlistings.Coords) *coordsDocument {
	if c == nil {
		return nil
	}
	return &coordsDocument{Lat: c.Lat, Lon: c.Lon}
}

func (c *coordsDocument) toDomain() *domainlistings.Coords {
	if c == nil {
		return nil
	}
	return &domainlistings.Coords{Lat: c.Lat, Lon: c.Lon}
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
