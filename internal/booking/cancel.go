package booking

import (
	"context"
	"errors"

	"github.com/metinatakli/movie-booking-service/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CancelBooking cancels a CREATED or CONFIRMED booking and gives its seats
// back to the show. A repeated cancel fails with ErrAlreadyCancelled and does
// not touch the seat count again.
func (s *Service) CancelBooking(ctx context.Context, req domain.CancelRequest) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "booking.CancelBooking", trace.WithAttributes(
		attribute.Int("booking.id", req.BookingID),
	))
	defer span.End()

	booking, err := withRetry(ctx, s, "cancel", func() (*domain.Booking, error) {
		booking, err := s.cancelOnce(ctx, req)
		if errors.Is(err, domain.ErrCommitUnknown) {
			current, lookupErr := s.store.FindBookingByID(ctx, req.BookingID)
			if lookupErr == nil && current.Status == domain.BookingStatusCancelled {
				return current, nil
			}
		}

		return booking, err
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	s.metrics.cancelled.Add(ctx, 1)
	s.publish(ctx, domain.EventBookingCancelled, booking)

	return booking, nil
}

func (s *Service) cancelOnce(ctx context.Context, req domain.CancelRequest) (*domain.Booking, error) {
	var cancelled *domain.Booking

	err := s.store.RunInTx(ctx, func(tx domain.InventoryTx) error {
		b, err := tx.FindBookingByID(ctx, req.BookingID)
		if err != nil {
			return notFound(err, domain.ErrBookingNotFound)
		}

		err = checkCancellable(b, req)
		if err != nil {
			return err
		}

		show, err := s.lockShow(ctx, tx, b.ShowID)
		if err != nil {
			return err
		}

		b, err = tx.FindBookingByIDForUpdate(ctx, req.BookingID)
		if err != nil {
			return notFound(err, domain.ErrBookingNotFound)
		}

		err = checkCancellable(b, req)
		if err != nil {
			return err
		}

		err = b.Cancel(req.Reason, s.now())
		if err != nil {
			return err
		}

		err = tx.SaveBooking(ctx, b)
		if err != nil {
			return err
		}

		err = s.restoreSeats(ctx, tx, show, b)
		if err != nil {
			return err
		}

		cancelled = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cancelled, nil
}

func checkCancellable(b *domain.Booking, req domain.CancelRequest) error {
	if !req.Privileged && !b.IsOwnedBy(req.RequesterID) {
		return domain.ErrForbidden
	}

	if b.Status == domain.BookingStatusCancelled {
		return domain.ErrAlreadyCancelled
	}

	return nil
}
