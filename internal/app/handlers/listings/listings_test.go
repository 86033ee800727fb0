package listings_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	listingsapp "stayhub/internal/app/handlers/listings"
	"stayhub/internal/app/policies"
	"stayhub/internal/domain/auth"
	domainlistings "stayhub/internal/domain/listings"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/shared/daterange"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/storage/memory"
)

var (
	owner    = &auth.Actor{ID: "owner", Role: domainuser.RoleMember}
	stranger = &auth.Actor{ID: "stranger", Role: domainuser.RoleMember}
	admin    = &auth.Actor{ID: "root", Role: domainuser.RoleAdmin}
	clock    = func() time.Time { return time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC) }
)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeGeocoder struct {
	mu      sync.Mutex
	known   map[string]domainlistings.Coords
	failing map[string]bool
	calls   []string
}

func (g *fakeGeocoder) Geocode(_ context.Context, query string) (*domainlistings.Coords, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, query)
	if g.failing[query] {
		return nil, policies.ErrGeocoderUnavailable
	}
	c, ok := g.known[query]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type fakeImages struct {
	keys []string
}

func (s *fakeImages) Upload(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	s.keys = append(s.keys, key)
	return "https://cdn.example.com/" + key, nil
}

type env struct {
	store    *memory.Store
	outbox   *memory.Outbox
	geocoder *fakeGeocoder
	create   *listingsapp.CreateListingHandler
	update   *listingsapp.UpdateListingHandler
	remove   *listingsapp.DeleteListingHandler
	upload   *listingsapp.UploadImageHandler
	get      *listingsapp.GetListingHandler
	search   *listingsapp.SearchListingsHandler
}

func newEnv() *env {
	store := memory.NewStore()
	factory := memory.NewUnitOfWorkFactory(store)
	box := memory.NewOutbox()
	geo := &fakeGeocoder{
		known: map[string]domainlistings.Coords{
			"Mora":                {Lat: 61.0, Lon: 14.5},
			"Rättvik":             {Lat: 60.9, Lon: 15.1},
			"Vasaloppet, Sverige": {Lat: 61.01, Lon: 14.54},
		},
		failing: map[string]bool{"Down": true, "Storm, Sverige": true},
	}
	locator := listingsapp.Locator{Geocoder: geo, ActivitySuffix: ", Sverige", Delay: time.Millisecond}
	return &env{
		store:    store,
		outbox:   box,
		geocoder: geo,
		create:   &listingsapp.CreateListingHandler{UoWFactory: factory, Locator: locator, Outbox: box, Now: clock},
		update:   &listingsapp.UpdateListingHandler{UoWFactory: factory, Locator: locator, Outbox: box, Now: clock},
		remove:   &listingsapp.DeleteListingHandler{UoWFactory: factory, Outbox: box, Now: clock},
		upload:   &listingsapp.UploadImageHandler{UoWFactory: factory, Images: &fakeImages{}, Now: clock},
		get:      &listingsapp.GetListingHandler{UoWFactory: factory},
		search:   &listingsapp.SearchListingsHandler{UoWFactory: factory},
	}
}

func fields() listingsapp.ListingFields {
	return listingsapp.ListingFields{
		Title:       "Lake cabin",
		Description: "Quiet cabin",
		Location:    "Mora",
		Type:        "house",
		Place:       "lake",
		Capacity:    domainlistings.Capacity{MaxAdults: 4, MaxKids: 2},
		Prices:      pricing.RateSchedule{Adult: 100, Kid: 50, Animal: 30, Base: 200},
		AvailableDates: []daterange.DateRange{
			{Start: day(time.June, 1), End: day(time.June, 15)},
			{Start: day(time.June, 10), End: day(time.June, 30)},
		},
		NearActivities: domainlistings.NearActivities{
			Description: "Outdoors",
			Activities: []domainlistings.Activity{
				{Name: "skiing", Location: "Vasaloppet"},
				{Name: "sailing", Location: "Storm"},
			},
		},
	}
}

func TestCreateListingGeocodes(t *testing.T) {
	e := newEnv()
	out, err := e.create.Handle(context.Background(), listingsapp.CreateListingCommand{ActingUser: owner, Fields: fields()})
	require.NoError(t, err)

	require.NotNil(t, out.Coords)
	assert.Equal(t, 61.0, out.Coords.Lat)
	assert.Equal(t, "owner", out.CreatedBy)
	assert.Equal(t, 380.0, out.TotalPrice)
	require.Len(t, out.AvailableDates, 1)
	assert.Equal(t, day(time.June, 30), out.AvailableDates[0].End)

	require.Len(t, out.NearActivities.Activities, 2)
	assert.NotNil(t, out.NearActivities.Activities[0].Coords)
	assert.Nil(t, out.NearActivities.Activities[1].Coords, "failed activity lookups degrade to null coords")
	assert.Equal(t, []string{"Mora", "Vasaloppet, Sverige", "Storm, Sverige"}, e.geocoder.calls)
}

func TestCreateListingPrimaryLocation(t *testing.T) {
	e := newEnv()

	f := fields()
	f.Location = "Atlantis"
	_, err := e.create.Handle(context.Background(), listingsapp.CreateListingCommand{ActingUser: owner, Fields: f})
	require.ErrorIs(t, err, domainlistings.ErrInvalidLocation)

	f.Location = "Down"
	_, err = e.create.Handle(context.Background(), listingsapp.CreateListingCommand{ActingUser: owner, Fields: f})
	require.ErrorIs(t, err, policies.ErrGeocoderUnavailable)

	found, err := e.store.Listings().Search(context.Background(), domainlistings.SearchFilter{})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCreateListingValidatesBeforeGeocoding(t *testing.T) {
	e := newEnv()
	f := fields()
	f.Capacity.MaxAdults = 0
	_, err := e.create.Handle(context.Background(), listingsapp.CreateListingCommand{ActingUser: owner, Fields: f})
	require.ErrorIs(t, err, domainlistings.ErrMaxAdults)
	assert.Empty(t, e.geocoder.calls)

	_, err = e.create.Handle(context.Background(), listingsapp.CreateListingCommand{Fields: fields()})
	require.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestCreateListingStopsOnCancel(t *testing.T) {
	e := newEnv()
	e.create.Locator.Delay = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := e.create.Handle(ctx, listingsapp.CreateListingCommand{ActingUser: owner, Fields: fields()})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func createListing(t *testing.T, e *env) string {
	t.Helper()
	out, err := e.create.Handle(context.Background(), listingsapp.CreateListingCommand{ActingUser: owner, Fields: fields()})
	require.NoError(t, err)
	e.geocoder.calls = nil
	return out.ID
}

func TestUpdateListing(t *testing.T) {
	e := newEnv()
	id := createListing(t, e)
	ctx := context.Background()

	title := "Renamed"
	_, err := e.update.Handle(ctx, listingsapp.UpdateListingCommand{ActingUser: stranger, ListingID: id, Changes: domainlistings.UpdateParams{Title: &title}})
	require.ErrorIs(t, err, domainlistings.ErrNotOwner)

	moved := "Rättvik"
	prices := pricing.RateSchedule{Adult: 1, Kid: 1, Animal: 1, Base: 1}
	out, err := e.update.Handle(ctx, listingsapp.UpdateListingCommand{ActingUser: owner, ListingID: id, Changes: domainlistings.UpdateParams{
		Title: &title, Location: &moved, Prices: &prices,
	}})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Title)
	assert.Equal(t, 60.9, out.Coords.Lat)
	assert.Equal(t, 4.0, out.TotalPrice)
	assert.Equal(t, "Quiet cabin", out.Description)
	assert.Equal(t, []string{"Rättvik"}, e.geocoder.calls)
}

func TestUpdateListingSameLocationSkipsGeocoding(t *testing.T) {
	e := newEnv()
	id := createListing(t, e)

	same := "Mora"
	_, err := e.update.Handle(context.Background(), listingsapp.UpdateListingCommand{ActingUser: owner, ListingID: id, Changes: domainlistings.UpdateParams{Location: &same}})
	require.NoError(t, err)
	assert.Empty(t, e.geocoder.calls)
}

func TestUpdateListingAvailability(t *testing.T) {
	e := newEnv()
	id := createListing(t, e)
	ctx := context.Background()

	empty := []daterange.DateRange{}
	out, err := e.update.Handle(ctx, listingsapp.UpdateListingCommand{ActingUser: owner, ListingID: id, Changes: domainlistings.UpdateParams{AvailableDates: &empty}})
	require.ErrorIs(t, err, domainlistings.ErrAvailabilityRequired)
	assert.Nil(t, out)

	ranges := []daterange.DateRange{
		{Start: day(time.August, 5), End: day(time.August, 9)},
		{Start: day(time.August, 1), End: day(time.August, 5)},
	}
	out, err = e.update.Handle(ctx, listingsapp.UpdateListingCommand{ActingUser: owner, ListingID: id, Changes: domainlistings.UpdateParams{AvailableDates: &ranges}})
	require.NoError(t, err)
	require.Len(t, out.AvailableDates, 1)
	assert.Equal(t, day(time.August, 1), out.AvailableDates[0].Start)
	assert.Equal(t, day(time.August, 9), out.AvailableDates[0].End)
	assert.True(t, out.IsAvailable)
}

func TestDeleteListing(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	id := createListing(t, e)
	_, err := e.remove.Handle(ctx, listingsapp.DeleteListingCommand{ActingUser: stranger, ListingID: id})
	require.ErrorIs(t, err, domainlistings.ErrNotOwner)

	res, err := e.remove.Handle(ctx, listingsapp.DeleteListingCommand{ActingUser: admin, ListingID: id})
	require.NoError(t, err)
	assert.Equal(t, id, res.ID)

	_, err = e.get.Handle(ctx, listingsapp.GetListingQuery{ListingID: id})
	require.ErrorIs(t, err, domainlistings.ErrNotFound)

	_, err = e.remove.Handle(ctx, listingsapp.DeleteListingCommand{ActingUser: admin, ListingID: id})
	require.ErrorIs(t, err, domainlistings.ErrNotFound)
}

func TestGetListingRejectsBadID(t *testing.T) {
	_, err := newEnv().get.Handle(context.Background(), listingsapp.GetListingQuery{ListingID: "zzz"})
	require.ErrorIs(t, err, domainlistings.ErrInvalidID)
}

func TestSearchListings(t *testing.T) {
	e := newEnv()
	createListing(t, e)
	ctx := context.Background()

	found, err := e.search.Handle(ctx, listingsapp.SearchListingsQuery{Filter: domainlistings.SearchFilter{Location: "mora"}})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = e.search.Handle(ctx, listingsapp.SearchListingsQuery{Filter: domainlistings.SearchFilter{Activities: []string{"skiing", "golf"}}})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUploadImage(t *testing.T) {
	e := newEnv()
	id := createListing(t, e)
	ctx := context.Background()
	body := func() io.Reader { return strings.NewReader("fake-bytes") }

	_, err := e.upload.Handle(ctx, listingsapp.UploadImageCommand{ActingUser: owner, ListingID: id, ContentType: "image/gif", Size: 10, Body: body()})
	require.ErrorIs(t, err, listingsapp.ErrImageType)

	_, err = e.upload.Handle(ctx, listingsapp.UploadImageCommand{ActingUser: owner, ListingID: id, ContentType: "image/png", Size: listingsapp.MaxImageSize + 1, Body: body()})
	require.ErrorIs(t, err, listingsapp.ErrImageTooLarge)

	_, err = e.upload.Handle(ctx, listingsapp.UploadImageCommand{ActingUser: stranger, ListingID: id, ContentType: "image/png", Size: 10, Body: body()})
	require.ErrorIs(t, err, domainlistings.ErrNotOwner)

	out, err := e.upload.Handle(ctx, listingsapp.UploadImageCommand{ActingUser: owner, ListingID: id, ContentType: "image/png", Size: 10, Body: body()})
	require.NoError(t, err)
	require.Len(t, out.Images, 1)
	assert.True(t, strings.HasPrefix(out.Images[0], "https://cdn.example.com/housings/"+id+"/"))
	assert.True(t, strings.HasSuffix(out.Images[0], ".png"))
}

func TestUploadImageWithoutStore(t *testing.T) {
	e := newEnv()
	id := createListing(t, e)
	e.upload.Images = nil
	_, err := e.upload.Handle(context.Background(), listingsapp.UploadImageCommand{ActingUser: owner, ListingID: id, ContentType: "image/png", Size: 10, Body: strings.NewReader("x")})
	require.True(t, errors.Is(err, listingsapp.ErrUploadsOff))
}
