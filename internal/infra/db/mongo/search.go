package mongo

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	domainlistings "stayhub/internal/domain/listings"
)

// searchQuery translates the catalog filter into a Mongo selector.
func searchQuery(f domainlistings.SearchFilter) bson.M {
	q := bson.M{"is_available": true}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		q["location"] = bson.M{"$regex": regexp.QuoteMeta(loc), "$options": "i"}
	}
	if f.Window != nil {
		q["available_dates"] = bson.M{"$elemMatch": bson.M{
			"start": bson.M{"$lte": f.Window.End.UTC()},
			"end":   bson.M{"$gte": f.Window.Start.UTC()},
		}}
	}
	if f.MinAdults != nil {
		q["max_adults"] = bson.M{"$gte": *f.MinAdults}
	}
	if f.MinKids != nil {
		q["max_kids"] = bson.M{"$gte": *f.MinKids}
	}
	if f.MinAnimals != nil {
		q["max_animals"] = bson.M{"$gte": *f.MinAnimals}
	}
	if f.Price != nil {
		q["total_price"] = bson.M{"$gte": f.Price.Min, "$lte": f.Price.Max}
	}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Place != "" {
		q["place"] = f.Place
	}
	if f.PetFriendly != nil {
		q["pet_friendly"] = *f.PetFriendly
	}
	if len(f.Activities) > 0 {
		q["activities.name"] = bson.M{"$all": append([]string(nil), f.Activities...)}
	}
	return q
}
