package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stayhub/internal/app/middleware"
	appoutbox "stayhub/internal/app/outbox"
	authsvc "stayhub/internal/app/services/auth"
	"stayhub/internal/app/uow"
	"stayhub/internal/app/wiring"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/broker/kafka"
	"stayhub/internal/infra/config"
	mongostore "stayhub/internal/infra/db/mongo"
	"stayhub/internal/infra/geocode"
	ginserver "stayhub/internal/infra/http/gin"
	"stayhub/internal/infra/obs"
	infraoutbox "stayhub/internal/infra/outbox"
	"stayhub/internal/infra/security"
	"stayhub/internal/infra/storage/memory"
	"stayhub/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	defer st.close()

	deps := wiring.Deps{
		Factory:        st.factory,
		Idempotency:    st.idempotency,
		Outbox:         st.outbox,
		Encoder:        appoutbox.JSONEventEncoder{},
		ActivitySuffix: cfg.GeocoderSuffix,
		GeocoderDelay:  cfg.GeocoderDelay,
		Logger:         logger,
	}
	if cfg.GeocoderURL != "" {
		deps.Geocoder = geocode.NewNominatim(geocode.Options{
			BaseURL:     cfg.GeocoderURL,
			CountryCode: cfg.GeocoderCountry,
			UserAgent:   cfg.GeocoderUserAgent,
			CacheTTL:    cfg.GeocoderCacheTTL,
			Logger:      logger,
		})
	}
	if cfg.S3Endpoint != "" {
		images, err := s3.NewImageStore(s3.Config{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			logger.Error("image storage init failed", "error", err)
			os.Exit(1)
		}
		deps.Images = images
	} else {
		logger.Warn("S3_ENDPOINT not set, image uploads disabled")
	}
	buses := wiring.Build(deps)

	tokens, err := security.NewJWTIssuer(cfg.AccessTokenSecret, cfg.AccessTokenTTL)
	if err != nil {
		logger.Error("token issuer init failed", "error", err)
		os.Exit(1)
	}
	authService := &authsvc.Service{
		Users:     st.users,
		Passwords: security.BcryptHasher{},
		Tokens:    tokens,
		Logger:    logger,
	}
	authMW := ginserver.AuthMiddleware{Service: authService, Logger: logger}
	nominatim := ginserver.NominatimProxy{BaseURL: cfg.GeocoderURL, Logger: logger}

	handlers := ginserver.Handlers{
		Listing:        ginserver.ListingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		Admin:          ginserver.AdminHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Nominatim:      nominatim.Forward,
		Authentication: authMW.Handle,
		RequireAuth:    authMW.Require,
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: st.checks}, handlers)

	if st.relay != nil {
		go func() {
			if err := st.relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", st.kind)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type storage struct {
	kind        string
	factory     uow.UoWFactory
	idempotency middleware.IdempotencyStore
	outbox      appoutbox.Outbox
	users       domainuser.Repository
	checks      map[string]func(ctx context.Context) error
	relay       *infraoutbox.Worker
	closers     []func(ctx context.Context) error
}

func (s *storage) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i](ctx)
	}
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.InMemory() {
		store := memory.NewStore()
		return &storage{
			kind:        "memory",
			factory:     memory.NewUnitOfWorkFactory(store),
			idempotency: memory.NewIdempotencyStore(),
			outbox:      memory.NewOutbox(),
			users:       store.Users(),
		}, nil
	}

	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	st := &storage{
		kind:    "mongo",
		factory: mongostore.NewFactory(client.DB),
		users:   mongostore.NewUserRepository(client.DB),
		checks:  map[string]func(ctx context.Context) error{"mongo": client.Ping},
		closers: []func(ctx context.Context) error{client.Close},
	}
	if err := client.EnsureIndexes(ctx); err != nil {
		st.close()
		return nil, err
	}
	if st.idempotency, err = mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL); err != nil {
		st.close()
		return nil, err
	}
	events, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		st.close()
		return nil, err
	}
	st.outbox = events

	if len(cfg.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, outbox events stay in the database")
		return st, nil
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, "stayhub")
	if err != nil {
		st.close()
		return nil, err
	}
	st.closers = append(st.closers, func(context.Context) error { return producer.Close() })
	st.relay = &infraoutbox.Worker{
		Store:       events,
		Producer:    producer,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	return st, nil
}
