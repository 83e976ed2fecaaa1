package booking

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/metinatakli/movie-booking-service/internal/domain"
)

type fakeLocker struct {
	mu       sync.Mutex
	held     bool
	released int
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return "", false, nil
	}

	l.held = true
	return "token", true, nil
}

func (l *fakeLocker) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.held = false
	l.released++
	return nil
}

func (s *ServiceTestSuite) newSweeper(locker Locker) *Sweeper {
	return NewSweeper(s.service, locker, SweeperConfig{
		ReservationTTL: 15 * time.Minute,
		Interval:       time.Minute,
		BatchSize:      10,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (s *ServiceTestSuite) TestSweepOnceExpiresStalePendingBookings() {
	stale, err := s.book(userOne, "A1", "A2")
	s.Require().NoError(err)
	confirmed, err := s.book(userTwo, "B1")
	s.Require().NoError(err)
	_, err = s.service.ApplyPaymentResult(context.Background(), domain.PaymentResult{BookingID: confirmed.ID, Succeeded: true})
	s.Require().NoError(err)

	s.clock.Advance(10 * time.Minute)
	fresh, err := s.book(userTwo, "C1")
	s.Require().NoError(err)

	s.clock.Advance(10 * time.Minute)

	locker := &fakeLocker{}
	expired, err := s.newSweeper(locker).SweepOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(1, expired)
	s.Equal(1, locker.released)

	got, err := s.store.FindBookingByID(context.Background(), stale.ID)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusExpired, got.Status)

	got, err = s.store.FindBookingByID(context.Background(), fresh.ID)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusCreated, got.Status)

	got, err = s.store.FindBookingByID(context.Background(), confirmed.ID)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusConfirmed, got.Status)

	s.Equal(8, s.store.show(testShowID).AvailableSeats)
	s.Contains(s.publisher.types(), domain.EventBookingExpired)
}

func (s *ServiceTestSuite) TestSweepOnceSkipsWhenLockIsHeld() {
	_, err := s.book(userOne, "A1")
	s.Require().NoError(err)
	s.clock.Advance(time.Hour)

	locker := &fakeLocker{held: true}
	expired, err := s.newSweeper(locker).SweepOnce(context.Background())
	s.Require().NoError(err)
	s.Zero(expired)
	s.Equal(9, s.store.show(testShowID).AvailableSeats)
}

func (s *ServiceTestSuite) TestExpireBookingIsNoopForCancelledBooking() {
	b, err := s.book(userOne, "A1")
	s.Require().NoError(err)
	_, err = s.cancel(b.ID, userOne, false)
	s.Require().NoError(err)

	_, changed, err := s.service.ExpireBooking(context.Background(), b.ID)
	s.Require().NoError(err)
	s.False(changed)
	s.Equal(10, s.store.show(testShowID).AvailableSeats)
}

func (s *ServiceTestSuite) TestSweeperDisabledWithoutTTL() {
	sweeper := NewSweeper(s.service, nil, SweeperConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.False(sweeper.Enabled())

	done := make(chan struct{})
	go func() {
		sweeper.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("disabled sweeper did not return")
	}
}
