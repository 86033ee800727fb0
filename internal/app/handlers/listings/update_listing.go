package listings

import (
	"context"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainlistings "stayhub/internal/domain/listings"
)

const UpdateListingKey = "listings.update"

type UpdateListingCommand struct {
	ActingUser *auth.Actor
	ListingID  string
	Changes    domainlistings.UpdateParams
}

func (UpdateListingCommand) Key() string { return UpdateListingKey }

func (c UpdateListingCommand) Actor() *auth.Actor { return c.ActingUser }

// LockKey shares the booking lock: owner edits to availability and bookings
// are writers of the same set.
func (c UpdateListingCommand) LockKey() string {
	return domainlistings.CanonicalID(c.ListingID)
}

type UpdateListingHandler struct {
	UoWFactory uow.UoWFactory
	Locator    Locator
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (*dto.Listing, error) {
	if err := auth.Require(cmd.ActingUser); err != nil {
		return nil, err
	}
	id, err := domainlistings.ParseID(cmd.ListingID)
	if err != nil {
		return nil, err
	}
	changes := cmd.Changes
	if err := changes.Validate(); err != nil {
		return nil, err
	}
	if changes.Now.IsZero() {
		changes.Now = time.Now()
		if h.Now != nil {
			changes.Now = h.Now()
		}
	}

	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
	}
	listing, err := unit.Listings().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := listing.EnsureOwner(cmd.ActingUser); err != nil {
		return nil, err
	}

	var coords *domainlistings.Coords
	if changes.LocationChanged(listing.Location) {
		if coords, err = h.Locator.Primary(ctx, *changes.Location); err != nil {
			return nil, err
		}
	}
	if changes.NearActivities != nil {
		located, err := h.Locator.Activities(ctx, *changes.NearActivities)
		if err != nil {
			return nil, err
		}
		changes.NearActivities = &located
	}
	if err := listing.ApplyUpdate(changes, coords); err != nil {
		return nil, err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, listing.Drain()); err != nil {
		return nil, err
	}
	if release != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
	}
	out := dto.MapListing(listing)
	return &out, nil
}

var (
	_ commands.Handler[UpdateListingCommand, *dto.Listing] = (*UpdateListingHandler)(nil)
	_ middleware.SerializedCommand                         = UpdateListingCommand{}
	_ middleware.ActorCommand                              = UpdateListingCommand{}
)
