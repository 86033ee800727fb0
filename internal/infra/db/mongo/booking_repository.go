package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "stayhub/internal/domain/booking"
	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/user"
)

var ErrDuplicateBooking = errors.New("mongo: booking already stored")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(colBookings)}
}

func bookingIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "housing_id", Value: 1}}},
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save writes a booking once; bookings are never updated.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if _, err := r.col.InsertOne(ctx, newBookingDocument(b)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateBooking
		}
		return asConflict(err)
	}
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID user.ID) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": string(userID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]*domainbooking.Booking, 0)
	for cur.Next(ctx) {
		var doc bookingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cur.Err()
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

type guestsDocument struct {
	Adults  int `bson:"adults"`
	Kids    int `bson:"kids"`
	Animals int `bson:"animals"`
}

type bookingDocument struct {
	ID            string         `bson:"_id"`
	UserID        string         `bson:"user_id"`
	ListingID     string         `bson:"housing_id"`
	Range         rangeDocument  `bson:"range"`
	Guests        guestsDocument `bson:"guests"`
	Nights        int            `bson:"nights"`
	TotalPrice    float64        `bson:"total_price"`
	PerNightPrice float64        `bson:"per_night_price"`
	CreatedAt     time.Time      `bson:"created_at"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:            string(b.ID),
		UserID:        string(b.UserID),
		ListingID:     string(b.ListingID),
		Range:         rangeDocument{Start: b.Range.Start.UTC(), End: b.Range.End.UTC()},
		Guests:        guestsDocument{Adults: b.Guests.Adults, Kids: b.Guests.Kids, Animals: b.Guests.Animals},
		Nights:        b.Nights,
		TotalPrice:    b.TotalPrice,
		PerNightPrice: b.PerNightPrice,
		CreatedAt:     b.CreatedAt.UTC(),
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:            domainbooking.ID(d.ID),
		UserID:        user.ID(d.UserID),
		ListingID:     listings.ID(d.ListingID),
		Range:         daterange.DateRange{Start: d.Range.Start.UTC(), End: d.Range.End.UTC()},
		Guests:        pricing.GuestCount{Adults: d.Guests.Adults, Kids: d.Guests.Kids, Animals: d.Guests.Animals},
		Nights:        d.Nights,
		TotalPrice:    d.TotalPrice,
		PerNightPrice: d.PerNightPrice,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
