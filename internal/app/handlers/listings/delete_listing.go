package listings

import (
	"context"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/uow"
	"stayhub/internal/domain/auth"
	domainlistings "stayhub/internal/domain/listings"
)

const DeleteListingKey = "listings.delete"

type DeleteListingCommand struct {
	ActingUser *auth.Actor
	ListingID  string
}

func (DeleteListingCommand) Key() string { return DeleteListingKey }

func (c DeleteListingCommand) Actor() *auth.Actor { return c.ActingUser }

func (c DeleteListingCommand) LockKey() string {
	return domainlistings.CanonicalID(c.ListingID)
}

type DeleteListingResult struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// DeleteListingHandler lets the owner or an admin remove a listing. Existing
// bookings keep their snapshot and simply lose the populated housing.
type DeleteListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *DeleteListingHandler) Handle(ctx context.Context, cmd DeleteListingCommand) (*DeleteListingResult, error) {
	if err := auth.Require(cmd.ActingUser); err != nil {
		return nil, err
	}
	id, err := domainlistings.ParseID(cmd.ListingID)
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
	listing, err := unit.Listings().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := listing.EnsureCanDelete(cmd.ActingUser); err != nil {
		return nil, err
	}
	if err := unit.Listings().Delete(ctx, id); err != nil {
		return nil, err
	}
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	listing.MarkDeleted(cmd.ActingUser.ID, now)
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, listing.Drain()); err != nil {
		return nil, err
	}
	if release != nil {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
	}
	return &DeleteListingResult{ID: string(id), Message: "housing deleted"}, nil
}

var (
	_ commands.Handler[DeleteListingCommand, *DeleteListingResult] = (*DeleteListingHandler)(nil)
	_ middleware.SerializedCommand                                 = DeleteListingCommand{}
)
