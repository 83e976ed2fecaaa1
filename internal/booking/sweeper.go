package booking

import (
	"context"
	"log/slog"
	"time"
)

const sweeperLockKey = "booking:sweeper:lock"

// Locker hands out a lease so that only one instance sweeps at a time.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

type SweeperConfig struct {
	// ReservationTTL is how long a booking may wait for payment. Zero
	// disables the sweeper.
	ReservationTTL time.Duration
	Interval       time.Duration
	BatchSize      int
}

// Sweeper expires CREATED bookings whose payment never arrived and gives
// their seats back.
type Sweeper struct {
	service *Service
	locker  Locker
	cfg     SweeperConfig
	logger  *slog.Logger
}

func NewSweeper(service *Service, locker Locker, cfg SweeperConfig, logger *slog.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	return &Sweeper{
		service: service,
		locker:  locker,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *Sweeper) Enabled() bool {
	return s.cfg.ReservationTTL > 0
}

// Run sweeps on every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if !s.Enabled() {
		s.logger.Info("reservation TTL not set, pending booking sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info("starting pending booking sweeper", "ttl", s.cfg.ReservationTTL, "interval", s.cfg.Interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopped pending booking sweeper")
			return
		case <-ticker.C:
			expired, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "pending booking sweep failed", "error", err)
				continue
			}

			if expired > 0 {
				s.logger.InfoContext(ctx, "expired pending bookings", "count", expired)
			}
		}
	}
}

// SweepOnce expires one batch of stale bookings and returns how many it
// expired. It does nothing when another instance holds the lock.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	if s.locker != nil {
		token, ok, err := s.locker.Acquire(ctx, sweeperLockKey, s.cfg.Interval)
		if err != nil {
			return 0, err
		}

		if !ok {
			return 0, nil
		}

		defer func() {
			err := s.locker.Release(context.WithoutCancel(ctx), sweeperLockKey, token)
			if err != nil {
				s.logger.WarnContext(ctx, "failed to release sweeper lock", "error", err)
			}
		}()
	}

	cutoff := s.service.now().Add(-s.cfg.ReservationTTL)

	stale, err := s.service.store.FindStalePendingBookings(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, b := range stale {
		_, changed, err := s.service.ExpireBooking(ctx, b.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to expire booking", "booking_id", b.ID, "error", err)
			continue
		}

		if changed {
			expired++
		}
	}

	return expired, nil
}
