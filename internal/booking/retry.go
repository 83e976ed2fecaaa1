package booking

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/metinatakli/movie-booking-service/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type RetryConfig struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     4,
		InitialInterval: 25 * time.Millisecond,
		MaxInterval:     time.Second,
		MaxElapsedTime:  10 * time.Second,
	}
}

// isRetryable reports whether an attempt failed before any effect became
// visible, or with an outcome that the caller reconciles before retrying.
func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrTransient) ||
		errors.Is(err, domain.ErrCommitUnknown) ||
		errors.Is(err, domain.ErrEditConflict)
}

// withRetry runs op with bounded exponential backoff. Domain errors stop the
// loop on the first occurrence.
func withRetry[T any](ctx context.Context, s *Service, operation string, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retry.InitialInterval
	b.MaxInterval = s.retry.MaxInterval

	result, err := backoff.Retry(ctx,
		func() (T, error) {
			v, err := op()
			if err != nil && !isRetryable(err) {
				return v, backoff.Permanent(err)
			}

			return v, err
		},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.retry.MaxAttempts),
		backoff.WithMaxElapsedTime(s.retry.MaxElapsedTime),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.metrics.retries.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
			s.logger.WarnContext(ctx, "retrying booking operation",
				"operation", operation,
				"backoff", next,
				"error", err)
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	return result, err
}
