package app

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      int
	Env       string
	Telemetry TelemetryConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Stripe    StripeConfig
	Kafka     KafkaConfig
	Booking   BookingConfig
}

type TelemetryConfig struct {
	CollectorUrl   string
	SampleRatio    float64
	MetricInterval time.Duration
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
	TxTimeout    time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessUrl    string
	FailureUrl    string
}

type KafkaConfig struct {
	Brokers             []string
	ClientID            string
	GroupID             string
	PaymentResultsTopic string
	RequiredAcks        int
}

// Enabled reports whether Kafka brokers are configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type BookingConfig struct {
	MaxAttempts    uint
	ReservationTTL time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int
}

// LoadConfig reads a .env file when present and parses args. Every flag
// defaults to the matching environment variable.
func LoadConfig(args []string) (Config, bool, error) {
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("api", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", getEnvAsInt("PORT", 3000), "server port")
	fs.StringVar(&cfg.Env, "env", getEnv("ENV", "dev"), "Environment (dev|staging|prod)")
	fs.StringVar(&cfg.Telemetry.CollectorUrl, "otel-collector-url", getEnv("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")
	fs.Float64Var(&cfg.Telemetry.SampleRatio, "otel-sample-ratio", getEnvAsFloat("OTEL_SAMPLE_RATIO", 1), "Fraction of root traces sampled")
	fs.DurationVar(&cfg.Telemetry.MetricInterval, "otel-metric-interval", getEnvAsDuration("OTEL_METRIC_INTERVAL", 15*time.Second), "Metric export interval")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", getEnv("DB_DSN", ""), "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", getEnvAsInt("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", getEnvAsDuration("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max idle time for connections")
	fs.DurationVar(&cfg.DB.TxTimeout, "db-tx-timeout", getEnvAsDuration("DB_TX_TIMEOUT", 5*time.Second), "PostgreSQL transaction timeout")

	fs.StringVar(&cfg.Redis.URL, "redis-url", getEnv("REDIS_URL", ""), "Redis URL")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", getEnvAsInt("REDIS_MAX_OPEN_CONNS", 25), "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", getEnvAsInt("REDIS_MAX_IDLE_CONNS", 10), "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", getEnvAsDuration("REDIS_MAX_IDLE_TIME", 2*time.Minute), "Redis max idle time for connections")

	fs.StringVar(&cfg.JWT.Secret, "jwt-secret", getEnv("JWT_SECRET", ""), "HMAC secret for access tokens")
	fs.StringVar(&cfg.JWT.Issuer, "jwt-issuer", getEnv("JWT_ISSUER", ""), "Expected access token issuer")

	fs.StringVar(&cfg.Stripe.SecretKey, "stripe-key", getEnv("STRIPE_KEY", ""), "Stripe secret key")
	fs.StringVar(&cfg.Stripe.WebhookSecret, "stripe-webhook-secret", getEnv("STRIPE_WEBHOOK_SECRET", ""), "Stripe webhook secret")
	fs.StringVar(&cfg.Stripe.SuccessUrl, "stripe-success-url", getEnv("STRIPE_SUCCESS_URL", "https://example.com/success.html"), "Stripe payment success page")
	fs.StringVar(&cfg.Stripe.FailureUrl, "stripe-failure-url", getEnv("STRIPE_FAILURE_URL", "https://example.com/failure.html"), "Stripe payment failure page")

	brokers := fs.String("kafka-brokers", getEnv("KAFKA_BROKERS", ""), "Comma separated Kafka brokers, empty disables Kafka")
	fs.StringVar(&cfg.Kafka.ClientID, "kafka-client-id", getEnv("KAFKA_CLIENT_ID", "movie-booking-service"), "Kafka client id")
	fs.StringVar(&cfg.Kafka.GroupID, "kafka-group-id", getEnv("KAFKA_GROUP_ID", "movie-booking-service"), "Kafka consumer group")
	fs.StringVar(&cfg.Kafka.PaymentResultsTopic, "kafka-payment-results-topic", getEnv("KAFKA_PAYMENT_RESULTS_TOPIC", "payment.results"), "Topic carrying payment results")
	fs.IntVar(&cfg.Kafka.RequiredAcks, "kafka-required-acks", getEnvAsInt("KAFKA_REQUIRED_ACKS", -1), "Producer acks (-1 all, 1 leader, 0 none)")

	maxAttempts := fs.Int("booking-max-attempts", getEnvAsInt("BOOKING_MAX_ATTEMPTS", 4), "Attempts per booking operation on transient failures")
	fs.DurationVar(&cfg.Booking.ReservationTTL, "booking-reservation-ttl", getEnvAsDuration("BOOKING_RESERVATION_TTL", 0), "How long a booking waits for payment, 0 disables expiry")
	fs.DurationVar(&cfg.Booking.SweepInterval, "booking-sweep-interval", getEnvAsDuration("BOOKING_SWEEP_INTERVAL", time.Minute), "Pending booking sweep interval")
	fs.IntVar(&cfg.Booking.SweepBatchSize, "booking-sweep-batch", getEnvAsInt("BOOKING_SWEEP_BATCH", 100), "Bookings expired per sweep")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err := fs.Parse(args)
	if err != nil {
		return Config{}, false, err
	}

	cfg.Kafka.Brokers = splitList(*brokers)

	if *maxAttempts < 1 {
		return Config{}, false, errors.New("booking-max-attempts must be at least 1")
	}
	cfg.Booking.MaxAttempts = uint(*maxAttempts)

	if cfg.Telemetry.SampleRatio < 0 || cfg.Telemetry.SampleRatio > 1 {
		return Config{}, false, errors.New("otel-sample-ratio must be between 0 and 1")
	}

	return cfg, *displayVersion, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}

	return value
}

func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
