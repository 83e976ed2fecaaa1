package integration_test

import (
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-service/internal/app"
	"github.com/metinatakli/movie-booking-service/internal/booking"
	"github.com/metinatakli/movie-booking-service/internal/payment"
	"github.com/metinatakli/movie-booking-service/internal/repository"
	appvalidator "github.com/metinatakli/movie-booking-service/internal/validator"
	"github.com/redis/go-redis/v9"
)

const (
	testJWTSecret     = "integration-jwt-secret"
	testWebhookSecret = "whsec_integration"
)

type TestApp struct {
	App             *app.Application
	DB              *pgxpool.Pool
	Redis           *redis.Client
	Store           *repository.PostgresInventoryStore
	Shows           *repository.PostgresShowRepository
	Service         *booking.Service
	PaymentProvider *payment.MockPaymentProvider
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	retry := booking.DefaultRetryConfig()
	retry.InitialInterval = 5 * time.Millisecond
	retry.MaxInterval = 50 * time.Millisecond

	store := repository.NewPostgresInventoryStore(db, cfg.DB.TxTimeout)
	service := booking.NewService(store, nil, logger, booking.WithRetry(retry))
	showRepo := repository.NewPostgresShowRepository(db)
	paymentProvider := payment.NewMockPaymentProvider()

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		service,
		showRepo,
		repository.NewPostgresPaymentRepository(db),
		paymentProvider,
		payment.NewWebhookParser(testWebhookSecret),
	)

	return &TestApp{
		App:             application,
		DB:              db,
		Redis:           redisClient,
		Store:           store,
		Shows:           showRepo,
		Service:         service,
		PaymentProvider: paymentProvider,
	}, nil
}

func (a *TestApp) Close() {
	a.Redis.Close()
	a.DB.Close()
}
