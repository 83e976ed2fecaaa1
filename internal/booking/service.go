// Package booking coordinates seat reservations against the inventory store.
// Every state change runs as one store transaction that locks the show row
// before any booking row.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-service/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Service struct {
	store     domain.InventoryStore
	publisher domain.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	retry     RetryConfig
	metrics   *metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithRetry(cfg RetryConfig) Option {
	return func(s *Service) {
		s.retry = cfg
	}
}

func NewService(
	store domain.InventoryStore,
	publisher domain.EventPublisher,
	logger *slog.Logger,
	opts ...Option) *Service {

	if publisher == nil {
		publisher = noopPublisher{}
	}

	s := &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		retry:     DefaultRetryConfig(),
		metrics:   mustMetrics(),
		tracer:    otel.Tracer(instrumentationName),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateBooking reserves the requested seats on a show. A request id reused
// by the same user returns the booking created by the first request.
func (s *Service) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.CreateBooking", trace.WithAttributes(
		attribute.Int("show.id", req.ShowID),
		attribute.Int("booking.seats", len(req.Seats)),
	))
	defer span.End()

	err := domain.ValidateSeatLabels(req.Seats)
	if err != nil {
		return nil, err
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	// fresh is set when this call committed the booking, as opposed to
	// replaying one stored by an earlier request.
	var fresh, commitUnknown bool

	booking, err := withRetry(ctx, s, "create", func() (*domain.Booking, error) {
		existing, err := s.findReplay(ctx, req)
		if existing != nil || err != nil {
			fresh = existing != nil && commitUnknown
			return existing, err
		}

		booking, err := s.createOnce(ctx, req)
		switch {
		case errors.Is(err, domain.ErrDuplicateRequest):
			existing, lookupErr := s.findReplay(ctx, req)
			if existing == nil && lookupErr == nil {
				return nil, err
			}
			return existing, lookupErr
		case errors.Is(err, domain.ErrCommitUnknown):
			commitUnknown = true

			existing, lookupErr := s.findReplay(ctx, req)
			if existing != nil {
				fresh = true
				return existing, nil
			}
			if lookupErr != nil {
				s.logger.WarnContext(ctx, "could not reconcile booking commit", "request_id", req.RequestID, "error", lookupErr)
			}
			return nil, err
		case err == nil:
			fresh = true
		}

		return booking, err
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSeatConflict):
			s.metrics.seatConflicts.Add(ctx, 1)
		case errors.Is(err, domain.ErrCapacityExceeded):
			s.metrics.capacityRejections.Add(ctx, 1)
		}

		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("booking.id", booking.ID))

	if fresh {
		s.metrics.created.Add(ctx, 1)
		s.publish(ctx, domain.EventBookingCreated, booking)
	}

	return booking, nil
}

// findReplay looks for a booking already stored under the request id. It
// rejects a replay whose show or seats differ from the original request.
func (s *Service) findReplay(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	existing, err := s.store.FindBookingByRequestID(ctx, req.UserID, req.RequestID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	if existing.ShowID != req.ShowID || !slices.Equal(existing.Seats, req.Seats) {
		return nil, fmt.Errorf("%w: request id %s was used for a different booking", domain.ErrDuplicateRequest, req.RequestID)
	}

	return existing, nil
}

func (s *Service) createOnce(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	var created *domain.Booking

	err := s.store.RunInTx(ctx, func(tx domain.InventoryTx) error {
		show, err := tx.GetShowForUpdate(ctx, req.ShowID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				return domain.ErrShowNotFound
			}

			return err
		}

		active, err := tx.FindActiveBookings(ctx, show.ID)
		if err != nil {
			return err
		}

		conflicts := conflictingSeats(req.Seats, resolveOccupancy(active))
		if len(conflicts) > 0 {
			return &domain.SeatConflictError{Seats: conflicts}
		}

		err = show.Reserve(len(req.Seats))
		if err != nil {
			return err
		}

		booking := &domain.Booking{
			RequestID:   req.RequestID,
			UserID:      req.UserID,
			ShowID:      show.ID,
			MovieID:     show.MovieID,
			TheatreID:   show.TheatreID,
			ShowTime:    show.StartTime,
			Seats:       slices.Clone(req.Seats),
			Status:      domain.BookingStatusCreated,
			TotalAmount: show.PriceFor(len(req.Seats)),
			Currency:    show.Currency,
		}

		err = tx.CreateBooking(ctx, booking)
		if err != nil {
			return err
		}

		err = tx.SaveShow(ctx, show)
		if err != nil {
			return err
		}

		created = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// ListBookings returns every booking to privileged roles and only the
// requester's own bookings to everyone else, newest first.
func (s *Service) ListBookings(
	ctx context.Context,
	requester domain.Requester,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	ctx, span := s.tracer.Start(ctx, "booking.ListBookings")
	defer span.End()

	filter := domain.BookingFilter{Pagination: pagination}
	if !requester.Role.IsPrivileged() {
		filter.UserID = &requester.UserID
	}

	type page struct {
		bookings []domain.Booking
		metadata *domain.Metadata
	}

	p, err := withRetry(ctx, s, "list", func() (page, error) {
		bookings, metadata, err := s.store.ListBookings(ctx, filter)
		return page{bookings, metadata}, err
	})
	if err != nil {
		recordError(span, err)
		return nil, nil, err
	}

	return p.bookings, p.metadata, nil
}

func (s *Service) GetBooking(ctx context.Context, requester domain.Requester, id int) (*domain.Booking, error) {
	booking, err := withRetry(ctx, s, "get", func() (*domain.Booking, error) {
		return s.store.FindBookingByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}

		return nil, err
	}

	if !requester.CanAccess(booking) {
		return nil, domain.ErrForbidden
	}

	return booking, nil
}

// ApplyPaymentResult confirms a pending booking on success. On failure the
// booking is marked FAILED and its seats go back to the show. Applying the
// same result twice leaves the booking unchanged.
func (s *Service) ApplyPaymentResult(ctx context.Context, result domain.PaymentResult) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.ApplyPaymentResult", trace.WithAttributes(
		attribute.Int("booking.id", result.BookingID),
		attribute.Bool("payment.succeeded", result.Succeeded),
	))
	defer span.End()

	target := domain.BookingStatusFailed
	eventType := domain.EventBookingFailed
	if result.Succeeded {
		target = domain.BookingStatusConfirmed
		eventType = domain.EventBookingConfirmed
	}

	booking, changed, err := s.transition(ctx, "payment", result.BookingID, target, func(tx domain.InventoryTx) error {
		if result.ProviderRef == "" {
			return nil
		}

		status := domain.PaymentStatusFailed
		if result.Succeeded {
			status = domain.PaymentStatusCompleted
		}

		return tx.SetPaymentStatus(ctx, result.ProviderRef, status, result.Reason)
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	if changed {
		s.metrics.paymentResults.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(target))))
		s.publish(ctx, eventType, booking)
	}

	return booking, nil
}

// ExpireBooking releases a booking that is still waiting for payment. It is a
// no-op for bookings that have moved on.
func (s *Service) ExpireBooking(ctx context.Context, id int) (*domain.Booking, bool, error) {
	booking, changed, err := s.transition(ctx, "expire", id, domain.BookingStatusExpired, nil)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, false, nil
		}

		return nil, false, err
	}

	if changed {
		s.metrics.expired.Add(ctx, 1)
		s.publish(ctx, domain.EventBookingExpired, booking)
	}

	return booking, changed, nil
}

// transition moves a booking to target under the show and booking row locks.
// Leaving the active set releases the booking's seats. A booking already in
// target is returned unchanged.
func (s *Service) transition(
	ctx context.Context,
	operation string,
	bookingID int,
	target domain.BookingStatus,
	extra func(tx domain.InventoryTx) error) (*domain.Booking, bool, error) {

	var changed bool

	booking, err := withRetry(ctx, s, operation, func() (*domain.Booking, error) {
		var (
			updated *domain.Booking
			applied bool
		)

		err := s.store.RunInTx(ctx, func(tx domain.InventoryTx) error {
			b, err := tx.FindBookingByID(ctx, bookingID)
			if err != nil {
				return notFound(err, domain.ErrBookingNotFound)
			}

			var show *domain.Show
			if !target.IsActive() {
				show, err = s.lockShow(ctx, tx, b.ShowID)
				if err != nil {
					return err
				}
			}

			b, err = tx.FindBookingByIDForUpdate(ctx, bookingID)
			if err != nil {
				return notFound(err, domain.ErrBookingNotFound)
			}

			if b.Status == target {
				updated = b
				return nil
			}

			releases := b.Status.IsActive() && !target.IsActive()

			err = b.Transition(target, s.now())
			if err != nil {
				return err
			}

			err = tx.SaveBooking(ctx, b)
			if err != nil {
				return err
			}

			if releases {
				err = s.restoreSeats(ctx, tx, show, b)
				if err != nil {
					return err
				}
			}

			if extra != nil {
				err = extra(tx)
				if err != nil {
					return err
				}
			}

			updated = b
			applied = true
			return nil
		})
		changed = err == nil && applied

		if errors.Is(err, domain.ErrCommitUnknown) {
			current, lookupErr := s.store.FindBookingByID(ctx, bookingID)
			if lookupErr == nil && current.Status == target {
				changed = true
				return current, nil
			}
		}

		return updated, err
	})
	if err != nil {
		return nil, false, err
	}

	return booking, changed, nil
}

// lockShow locks the show row. A missing show yields nil so that callers can
// still finish the booking change without restoring seats.
func (s *Service) lockShow(ctx context.Context, tx domain.InventoryTx, showID int) (*domain.Show, error) {
	show, err := tx.GetShowForUpdate(ctx, showID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return show, nil
}

// restoreSeats returns a released booking's seats to its show. It is the only
// place seats are given back.
func (s *Service) restoreSeats(ctx context.Context, tx domain.InventoryTx, show *domain.Show, b *domain.Booking) error {
	if show == nil {
		s.logger.WarnContext(ctx, "show no longer exists, seats not restored",
			"booking_id", b.ID,
			"show_id", b.ShowID,
			"seats", len(b.Seats))
		return nil
	}

	if !show.Release(len(b.Seats)) {
		s.logger.WarnContext(ctx, "available seats clamped to total, inventory drift detected",
			"booking_id", b.ID,
			"show_id", show.ID)
	}

	return tx.SaveShow(ctx, show)
}

func (s *Service) publish(ctx context.Context, eventType domain.BookingEventType, b *domain.Booking) {
	err := s.publisher.Publish(ctx, domain.NewBookingEvent(eventType, b, s.now()))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish booking event",
			"type", eventType,
			"booking_id", b.ID,
			"error", err)
	}
}

func notFound(err, target error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return target
	}

	return err
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.BookingEvent) error {
	return nil
}
