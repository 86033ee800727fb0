package listings

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
)

const CreateListingKey = "listings.create"

// ListingFields is the owner-supplied part of a listing.
type ListingFields struct {
	Title          string
	Description    string
	Location       string
	Type           string
	Place          string
	Capacity       domainlistings.Capacity
	Prices         pricing.RateSchedule
	AvailableDates []daterange.DateRange
	NearActivities domainlistings.NearActivities
	PetFriendly    bool
	Images         []string
	Rules          []string
	Bedrooms       int
	Rooms          int
	Beds           int
}

type CreateListingCommand struct {
	ActingUser *auth.Actor
	Fields     ListingFields
}

func (CreateListingCommand) Key() string { return CreateListingKey }

func (c CreateListingCommand) Actor() *auth.Actor { return c.ActingUser }

type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Locator    Locator
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() domainlistings.ID
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.Listing, error) {
	if err := auth.Require(cmd.ActingUser); err != nil {
		return nil, err
	}
	params := h.params(cmd)
	if err := domainlistings.ValidateCreate(params); err != nil {
		return nil, err
	}

	coords, err := h.Locator.Primary(ctx, params.Location)
	if err != nil {
		return nil, err
	}
	params.Coords = coords
	if params.NearActivities, err = h.Locator.Activities(ctx, params.NearActivities); err != nil {
		return nil, err
	}

	listing, err := domainlistings.NewListing(params)
	if err != nil {
		return nil, err
	}

	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
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
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "listing created", "listing_id", listing.ID, "creator_id", listing.CreatorID)
	}
	out := dto.MapListing(listing)
	return &out, nil
}

func (h *CreateListingHandler) params(cmd CreateListingCommand) domainlistings.CreateParams {
	f := cmd.Fields
	id := domainlistings.ID(uuid.NewString())
	if h.NewID != nil {
		id = h.NewID()
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	return domainlistings.CreateParams{
		ID:             id,
		CreatorID:      cmd.ActingUser.ID,
		Title:          f.Title,
		Description:    f.Description,
		Location:       f.Location,
		Type:           f.Type,
		Place:          f.Place,
		Capacity:       f.Capacity,
		Prices:         f.Prices,
		AvailableDates: f.AvailableDates,
		NearActivities: f.NearActivities,
		PetFriendly:    f.PetFriendly,
		Images:         f.Images,
		Rules:          f.Rules,
		Bedrooms:       f.Bedrooms,
		Rooms:          f.Rooms,
		Beds:           f.Beds,
		Now:            now,
	}
}

var (
	_ commands.Handler[CreateListingCommand, *dto.Listing] = (*CreateListingHandler)(nil)
	_ middleware.ActorCommand                              = CreateListingCommand{}
)
