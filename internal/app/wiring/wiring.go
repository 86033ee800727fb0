// Package wiring registers every command and query handler on the buses and
// wraps them in the standard middleware pipeline.
package wiring

import (
	"log/slog"
	"time"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	bookingapp "stayhub/internal/app/handlers/booking"
	listingsapp "stayhub/internal/app/handlers/listings"
	usersapp "stayhub/internal/app/handlers/users"
	"stayhub/internal/app/locks"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
)

type Deps struct {
	Factory     uow.UoWFactory
	Idempotency middleware.IdempotencyStore
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	// Geocoder and Images are optional.
	Geocoder       policies.Geocoder
	Images         policies.ImageStore
	ActivitySuffix string
	GeocoderDelay  time.Duration
	Logger         *slog.Logger
	Now            func() time.Time
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func Build(d Deps) Buses {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Encoder == nil {
		d.Encoder = outbox.JSONEventEncoder{}
	}
	locator := listingsapp.Locator{
		Geocoder:       d.Geocoder,
		ActivitySuffix: d.ActivitySuffix,
		Delay:          d.GeocoderDelay,
		Logger:         d.Logger,
	}

	cmdBus := commands.NewInMemoryBus()
	commands.RegisterHandler[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](cmdBus, bookingapp.CreateBookingKey, &bookingapp.CreateBookingHandler{
		UoWFactory: d.Factory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Now:        d.Now,
	})
	commands.RegisterHandler[listingsapp.CreateListingCommand, *dto.Listing](cmdBus, listingsapp.CreateListingKey, &listingsapp.CreateListingHandler{
		UoWFactory: d.Factory,
		Locator:    locator,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Logger:     d.Logger,
		Now:        d.Now,
	})
	commands.RegisterHandler[listingsapp.UpdateListingCommand, *dto.Listing](cmdBus, listingsapp.UpdateListingKey, &listingsapp.UpdateListingHandler{
		UoWFactory: d.Factory,
		Locator:    locator,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Now:        d.Now,
	})
	commands.RegisterHandler[listingsapp.DeleteListingCommand, *listingsapp.DeleteListingResult](cmdBus, listingsapp.DeleteListingKey, &listingsapp.DeleteListingHandler{
		UoWFactory: d.Factory,
		Outbox:     d.Outbox,
		Encoder:    d.Encoder,
		Now:        d.Now,
	})
	commands.RegisterHandler[listingsapp.UploadImageCommand, *dto.Listing](cmdBus, listingsapp.UploadImageKey, &listingsapp.UploadImageHandler{
		UoWFactory: d.Factory,
		Images:     d.Images,
		Now:        d.Now,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[listingsapp.GetListingQuery, *dto.Listing](queryBus, listingsapp.GetListingKey, &listingsapp.GetListingHandler{UoWFactory: d.Factory})
	queries.RegisterHandler[listingsapp.SearchListingsQuery, []dto.Listing](queryBus, listingsapp.SearchListingsKey, &listingsapp.SearchListingsHandler{UoWFactory: d.Factory})
	queries.RegisterHandler[bookingapp.ListMyBookingsQuery, []dto.BookingSummary](queryBus, bookingapp.ListMyBookingsKey, &bookingapp.ListMyBookingsHandler{UoWFactory: d.Factory})
	queries.RegisterHandler[bookingapp.GetBookingQuery, *dto.BookingDetails](queryBus, bookingapp.GetBookingKey, &bookingapp.GetBookingHandler{UoWFactory: d.Factory})

	usersapp.Register(cmdBus, queryBus, d.Factory)

	return Buses{
		Commands: middleware.ChainCommands(cmdBus,
			middleware.Logging(d.Logger),
			middleware.RequireActor(),
			middleware.Serialize(locks.NewKeyed()),
			middleware.Idempotency(d.Idempotency, nil),
			middleware.Transaction(d.Factory, nil),
			middleware.OutboxFlush(d.Outbox),
		),
		Queries: middleware.ChainQueries(queryBus, middleware.QueryLogging(d.Logger)),
	}
}
