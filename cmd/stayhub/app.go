package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	bookingapp "stayhub/internal/app/handlers/booking"
	listingapp "stayhub/internal/app/handlers/listings"
	meapp "stayhub/internal/app/handlers/me"
	quoteapp "stayhub/internal/app/handlers/quotes"
	"stayhub/internal/app/middleware"
	"stayhub/internal/app/outbox"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
	"stayhub/internal/infra/broker/kafka"
	"stayhub/internal/infra/config"
	"stayhub/internal/infra/db/dynamo"
	mongostore "stayhub/internal/infra/db/mongo"
	ginserver "stayhub/internal/infra/http/gin"
	"stayhub/internal/infra/inbox"
	"stayhub/internal/infra/obs"
	outboxrelay "stayhub/internal/infra/outbox"
	"stayhub/internal/infra/payments"
	"stayhub/internal/infra/storage/memory"
	"stayhub/internal/infra/storage/s3"
)

type application struct {
	logger   *slog.Logger
	commands commands.Bus
	queries  queries.Bus
	handlers ginserver.Handlers
	health   obs.HealthHandlers
	fixtures *s3.Client

	relay    *outboxrelay.Worker
	consumer *kafka.Consumer
	topics   []string
	closers  []func(context.Context) error
}

// storage bundles what a storage driver contributes to the application.
type storage struct {
	factory uow.UoWFactory
	outbox  outbox.Outbox
	queue   outboxrelay.Queue
	idem    middleware.IdempotencyStore
	inbox   kafka.Deduper
	checks  map[string]obs.Check
	close   func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{logger: logger}

	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if st.close != nil {
		app.closers = append(app.closers, st.close)
	}
	if cfg.IdempotencyBackend == config.IdempotencyDynamoDB {
		ddb, err := dynamo.NewClient(ctx, dynamo.Options{Region: cfg.AWSRegion, Endpoint: cfg.DynamoEndpoint})
		if err != nil {
			return nil, fmt.Errorf("dynamodb: %w", err)
		}
		st.idem = dynamo.NewIdempotencyStore(ddb, cfg.DynamoTable, cfg.IdempotencyTTL)
	}

	paymentsPort, err := buildPayments(cfg, logger)
	if err != nil {
		return nil, err
	}

	encoder := outbox.JSONEventEncoder{Source: "stayhub"}
	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler[bookingapp.RequestBookingCommand, dto.BookingResult](commandBus, bookingapp.RequestBookingCommand{}.Key(),
		&bookingapp.RequestBookingHandler{Outbox: st.outbox, Encoder: encoder, NewID: uuid.NewString, Logger: logger})
	commands.RegisterHandler[bookingapp.ConfirmHostBookingCommand, dto.BookingResult](commandBus, bookingapp.ConfirmHostBookingCommand{}.Key(),
		&bookingapp.ConfirmHostBookingHandler{Payments: paymentsPort, Outbox: st.outbox, Encoder: encoder, Logger: logger})
	commands.RegisterHandler[bookingapp.DeclineHostBookingCommand, dto.BookingResult](commandBus, bookingapp.DeclineHostBookingCommand{}.Key(),
		&bookingapp.DeclineHostBookingHandler{Outbox: st.outbox, Encoder: encoder, Logger: logger})
	commands.RegisterHandler[bookingapp.CancelBookingCommand, dto.BookingResult](commandBus, bookingapp.CancelBookingCommand{}.Key(),
		&bookingapp.CancelBookingHandler{Payments: paymentsPort, Outbox: st.outbox, Encoder: encoder, Logger: logger})
	commands.RegisterHandler[listingapp.UpdatePricingCommand, dto.ListingPricing](commandBus, listingapp.UpdatePricingCommand{}.Key(),
		&listingapp.UpdatePricingHandler{Outbox: st.outbox, Encoder: encoder, Logger: logger})
	commands.RegisterHandler[listingapp.SyncListingCommand, listingapp.SyncListingResult](commandBus, listingapp.SyncListingCommand{}.Key(),
		&listingapp.SyncListingHandler{
			Defaults: listingapp.PricingDefaults{Currency: cfg.DefaultCurrency, ServiceFeeRate: cfg.ServiceFeeRate, TaxRate: cfg.TaxRate},
			Outbox:   st.outbox,
			Encoder:  encoder,
			Logger:   logger,
		})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[quoteapp.GetQuoteQuery, dto.Quote](queryBus, quoteapp.GetQuoteQuery{}.Key(),
		&quoteapp.GetQuoteHandler{UoWFactory: st.factory, Logger: logger})
	queries.RegisterHandler[listingapp.SearchCatalogQuery, dto.ListingCatalog](queryBus, listingapp.SearchCatalogQuery{}.Key(),
		&listingapp.SearchCatalogHandler{UoWFactory: st.factory})
	queries.RegisterHandler[listingapp.GetPricingQuery, dto.ListingPricing](queryBus, listingapp.GetPricingQuery{}.Key(),
		&listingapp.GetPricingHandler{UoWFactory: st.factory})
	queries.RegisterHandler[listingapp.GetCalendarQuery, dto.Calendar](queryBus, listingapp.GetCalendarQuery{}.Key(),
		&listingapp.GetCalendarHandler{UoWFactory: st.factory})
	queries.RegisterHandler[bookingapp.ListHostBookingsQuery, dto.BookingCollection](queryBus, bookingapp.ListHostBookingsQuery{}.Key(),
		&bookingapp.ListHostBookingsHandler{UoWFactory: st.factory, Logger: logger})
	queries.RegisterHandler[bookingapp.HostStatsQuery, dto.HostStats](queryBus, bookingapp.HostStatsQuery{}.Key(),
		&bookingapp.HostStatsHandler{UoWFactory: st.factory, Logger: logger})
	queries.RegisterHandler[meapp.ListGuestBookingsQuery, dto.BookingCollection](queryBus, meapp.ListGuestBookingsQuery{}.Key(),
		&meapp.ListGuestBookingsHandler{UoWFactory: st.factory, Logger: logger})

	app.commands = middleware.ChainCommands(commandBus,
		middleware.Logging(logger),
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Authorization(middleware.SessionAuthorizer{}),
		middleware.Idempotency(st.idem, nil),
		middleware.Transaction(st.factory, nil),
		middleware.OutboxFlush(st.outbox),
	)
	app.queries = middleware.ChainQueries(queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(middleware.SelfValidator{}),
		middleware.QueryAuthorization(middleware.SessionAuthorizer{}),
	)

	app.handlers = ginserver.Handlers{
		Quote:          ginserver.QuoteHandler{Queries: app.queries, Logger: logger},
		Listing:        ginserver.ListingHandler{Queries: app.queries, Logger: logger},
		Booking:        ginserver.BookingHandler{Commands: app.commands, Logger: logger},
		HostBooking:    ginserver.HostBookingHandler{Commands: app.commands, Queries: app.queries, Logger: logger},
		HostListing:    ginserver.HostListingHandler{Commands: app.commands, Logger: logger},
		Me:             ginserver.MeHandler{Queries: app.queries, Logger: logger},
		AuthMiddleware: ginserver.IdentityMiddleware{Logger: logger}.Handle,
	}
	app.health = obs.HealthHandlers{Checks: st.checks, Timeout: 2 * time.Second}

	if cfg.S3FixturesBucket != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3FixturesBucket, logger)
		if err != nil {
			return nil, err
		}
		app.fixtures = client
	}

	if len(cfg.KafkaBrokers) > 0 {
		if err := app.wireKafka(cfg, st); err != nil {
			return nil, err
		}
	} else if st.queue != nil {
		logger.Warn("KAFKA_BROKERS not set, outbox events stay queued in mongo")
	}
	return app, nil
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, error) {
	if cfg.StorageDriver != config.StorageMongo {
		store := memory.NewStore()
		return storage{
			factory: memory.NewFactory(store),
			outbox:  memory.NewOutbox(logger),
			idem:    memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			inbox:   inbox.NewMemory(),
			checks:  map[string]obs.Check{},
		}, nil
	}
	client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storage{}, fmt.Errorf("mongo: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		return storage{}, fmt.Errorf("mongo ping: %w", err)
	}
	if err := client.EnsureIndexes(ctx); err != nil {
		return storage{}, fmt.Errorf("mongo indexes: %w", err)
	}
	box, err := outboxrelay.NewStore(ctx, client.DB)
	if err != nil {
		return storage{}, fmt.Errorf("mongo outbox: %w", err)
	}
	dedup, err := inbox.NewStore(ctx, client.DB, cfg.KafkaGroupID)
	if err != nil {
		return storage{}, fmt.Errorf("mongo inbox: %w", err)
	}
	st := storage{
		factory: client.Factory(),
		outbox:  box,
		queue:   box,
		inbox:   dedup,
		checks:  map[string]obs.Check{"mongo": client.Ping},
		close:   client.Close,
	}
	if cfg.IdempotencyBackend == config.IdempotencyMongo {
		idem, err := mongostore.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			return storage{}, fmt.Errorf("mongo idempotency: %w", err)
		}
		st.idem = idem
	} else {
		st.idem = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}
	return st, nil
}

func buildPayments(cfg config.Config, logger *slog.Logger) (policies.PaymentsPort, error) {
	if cfg.PaymentsMode != config.PaymentsMercadoPago {
		return payments.NewDemoGateway(logger), nil
	}
	return payments.NewMercadoPagoGateway(payments.MercadoPagoConfig{
		AccessToken:     cfg.MercadoPago.AccessToken,
		PaymentMethodID: cfg.MercadoPago.PaymentMethod,
		PayerEmail:      cfg.MercadoPago.PayerEmail,
	}, logger)
}

func (a *application) wireKafka(cfg config.Config, st storage) error {
	if st.queue != nil {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return producer.Close() })
		a.relay = &outboxrelay.Worker{
			Store:       st.queue,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Source:      "app://stayhub",
			Backoff:     cfg.RetryBackoff,
			Logger:      a.logger,
		}
	}
	sync := &kafka.ListingSync{Bus: a.commands, Inbox: st.inbox, Logger: a.logger}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, nil, sync, a.logger)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return consumer.Close() })
	a.consumer = consumer
	a.topics = []string{cfg.Topic(cfg.KafkaListingsTopic)}
	return nil
}

func (a *application) startBackground(ctx context.Context, errs chan<- error) {
	if a.relay != nil {
		go func() {
			a.logger.Info("outbox relay starting")
			if err := a.relay.Run(ctx); err != nil && ctx.Err() == nil {
				errs <- fmt.Errorf("outbox relay: %w", err)
			}
		}()
	}
	if a.consumer != nil {
		go func() {
			a.logger.Info("listing sync consumer starting", "topics", a.topics)
			if err := a.consumer.Run(ctx, a.topics); err != nil && ctx.Err() == nil {
				errs <- fmt.Errorf("listing consumer: %w", err)
			}
		}()
	}
}

func (a *application) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
