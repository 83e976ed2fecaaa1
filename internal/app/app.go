package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-service/api"
	"github.com/metinatakli/movie-booking-service/internal/booking"
	"github.com/metinatakli/movie-booking-service/internal/domain"
	"github.com/metinatakli/movie-booking-service/internal/payment"
	"github.com/metinatakli/movie-booking-service/internal/repository"
	appvalidator "github.com/metinatakli/movie-booking-service/internal/validator"
	"github.com/metinatakli/movie-booking-service/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/stripe/stripe-go/v82"
)

const serviceName = "movie-booking-service"

var (
	version = vcs.Version()
)

type webhookParser interface {
	Parse(payload []byte, signature string) (*domain.PaymentResult, error)
}

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate

	bookingService  domain.BookingService
	showRepo        domain.ShowRepository
	paymentRepo     domain.PaymentRepository
	paymentProvider domain.PaymentProvider
	webhookParser   webhookParser

	workers []func(ctx context.Context)
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redis redis.UniversalClient,
	validator *validator.Validate,
	bookingService domain.BookingService,
	showRepo domain.ShowRepository,
	paymentRepo domain.PaymentRepository,
	paymentProvider domain.PaymentProvider,
	webhookParser webhookParser,
) *Application {
	return &Application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redis,
		validator:       validator,
		bookingService:  bookingService,
		showRepo:        showRepo,
		paymentRepo:     paymentRepo,
		paymentProvider: paymentProvider,
		webhookParser:   webhookParser,
	}
}

func Run() error {
	cfg, displayVersion, err := LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stripe.Key = cfg.Stripe.SecretKey

	app := &Application{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	logger := app.logger

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher, err := newEventPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	retry := booking.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Booking.MaxAttempts

	store := repository.NewPostgresInventoryStore(db, cfg.DB.TxTimeout)
	bookingService := booking.NewService(store, publisher, logger, booking.WithRetry(retry))

	var paymentProvider domain.PaymentProvider = payment.NewStripePaymentProvider(cfg.Stripe.FailureUrl, cfg.Stripe.SuccessUrl)
	if cfg.Stripe.SecretKey == "" {
		logger.Warn("stripe key not set, using mock payment provider")
		paymentProvider = payment.NewMockPaymentProvider()
	}

	app = NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		bookingService,
		repository.NewPostgresShowRepository(db),
		repository.NewPostgresPaymentRepository(db),
		paymentProvider,
		payment.NewWebhookParser(cfg.Stripe.WebhookSecret),
	)

	sweeper := booking.NewSweeper(
		bookingService,
		repository.NewRedisLocker(redisClient),
		booking.SweeperConfig{
			ReservationTTL: cfg.Booking.ReservationTTL,
			Interval:       cfg.Booking.SweepInterval,
			BatchSize:      cfg.Booking.SweepBatchSize,
		},
		logger,
	)
	app.workers = append(app.workers, sweeper.Run)

	if cfg.Kafka.Enabled() {
		consumer, err := newPaymentResultConsumer(cfg, bookingService, logger)
		if err != nil {
			return err
		}

		app.workers = append(app.workers, consumer)
	}

	return app.run()
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var wg sync.WaitGroup
	for _, worker := range app.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(workerCtx)
		}()
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)

		stopWorkers()
		wg.Wait()

		shutdownError <- err
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "version", version)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)

	h := &api.ServerInterfaceWrapper{
		Handler:          app,
		ErrorHandlerFunc: app.invalidParamResponse,
	}

	r.Get("/healthcheck", h.GetHealth)
	r.Get("/shows/{showId}", h.GetShow)
	r.Post("/webhook", h.StripeWebhook)

	r.Group(func(r chi.Router) {
		r.Use(app.requireAuthentication)

		r.With(app.requireRole(domain.RoleClient, domain.RoleSystemAdmin, domain.RoleRootAdmin)).
			Post("/shows", h.CreateShow)

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", h.ListBookings)
			r.Post("/", h.CreateBooking)
			r.Get("/{bookingId}", h.GetBooking)
			r.Patch("/{bookingId}/cancel", h.CancelBooking)
			r.Post("/{bookingId}/checkout", h.CreateCheckoutSession)
		})
	})

	return r
}
