package listings

import (
	"context"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	domainlistings "stayhub/internal/domain/listings"
)

const (
	GetListingKey     = "listings.get"
	SearchListingsKey = "listings.search"
)

type GetListingQuery struct {
	ListingID string
}

func (GetListingQuery) Key() string { return GetListingKey }

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (*dto.Listing, error) {
	id, err := domainlistings.ParseID(q.ListingID)
	if err != nil {
		return nil, err
	}
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
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
	out := dto.MapListing(listing)
	return &out, nil
}

type SearchListingsQuery struct {
	Filter domainlistings.SearchFilter
}

func (SearchListingsQuery) Key() string { return SearchListingsKey }

type SearchListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchListingsHandler) Handle(ctx context.Context, q SearchListingsQuery) ([]dto.Listing, error) {
	unit, ctx, release, err := uow.Current(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer release()
	}
	found, err := unit.Listings().Search(ctx, q.Filter)
	if err != nil {
		return nil, err
	}
	return dto.MapListings(found), nil
}

var (
	_ queries.Handler[GetListingQuery, *dto.Listing]      = (*GetListingHandler)(nil)
	_ queries.Handler[SearchListingsQuery, []dto.Listing] = (*SearchListingsHandler)(nil)
)
