package policies

import (
	"context"

	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/shared/fault"
)

var ErrGeocoderUnavailable = fault.New(fault.ErrUpstream, "geocoder_unavailable", "geocoder: provider unavailable")

// Geocoder resolves a free-text place name. A nil result with a nil error
// means the provider knows no such place.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*domainlistings.Coords, error)
}
