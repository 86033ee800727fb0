package listings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"stayhub/internal/app/policies"
	domainlistings "stayhub/internal/domain/listings"
)

// Locator geocodes a listing's primary location and its near activities.
type Locator struct {
	Geocoder policies.Geocoder
	// ActivitySuffix is appended to every activity location, e.g. ", Sverige".
	ActivitySuffix string
	// Delay separates consecutive activity lookups within one request.
	Delay  time.Duration
	Logger *slog.Logger
}

// Primary resolves the listing location. An unknown place is
// ErrInvalidLocation; provider failures are returned as they are.
func (l Locator) Primary(ctx context.Context, location string) (*domainlistings.Coords, error) {
	if l.Geocoder == nil {
		return nil, nil
	}
	coords, err := l.Geocoder.Geocode(ctx, strings.TrimSpace(location))
	if err != nil {
		return nil, err
	}
	if coords == nil {
		return nil, domainlistings.ErrInvalidLocation
	}
	return coords, nil
}

// Activities returns a copy of na with coordinates filled in. A failed
// lookup leaves that activity without coordinates; only cancellation of ctx
// is returned as an error.
func (l Locator) Activities(ctx context.Context, na domainlistings.NearActivities) (domainlistings.NearActivities, error) {
	out := domainlistings.NearActivities{
		Description: na.Description,
		Activities:  make([]domainlistings.Activity, len(na.Activities)),
	}
	copy(out.Activities, na.Activities)
	if l.Geocoder == nil {
		return out, nil
	}
	for i := range out.Activities {
		if i > 0 && l.Delay > 0 {
			if err := sleep(ctx, l.Delay); err != nil {
				return domainlistings.NearActivities{}, err
			}
		}
		a := &out.Activities[i]
		coords, err := l.Geocoder.Geocode(ctx, strings.TrimSpace(a.Location)+l.ActivitySuffix)
		if err != nil && ctx.Err() != nil {
			return domainlistings.NearActivities{}, ctx.Err()
		}
		if err != nil || coords == nil {
			a.Coords = nil
			if l.Logger != nil {
				l.Logger.WarnContext(ctx, "activity location not geocoded", "activity", a.Name, "location", a.Location, "error", err)
			}
			continue
		}
		a.Coords = coords
	}
	return out, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
