package booking

import (
	"context"

	"github.com/metinatakli/movie-booking-service/internal/domain"
)

func (s *ServiceTestSuite) cancel(bookingID, requesterID int, privileged bool) (*domain.Booking, error) {
	return s.service.CancelBooking(context.Background(), domain.CancelRequest{
		BookingID:   bookingID,
		RequesterID: requesterID,
		Privileged:  privileged,
		Reason:      "test",
	})
}

func (s *ServiceTestSuite) TestCancelBookingRestoresSeats() {
	b, err := s.book(userOne, "A1", "A2", "A3")
	s.Require().NoError(err)
	s.Equal(7, s.store.show(testShowID).AvailableSeats)

	cancelled, err := s.cancel(b.ID, userOne, false)
	s.Require().NoError(err)

	s.Equal(domain.BookingStatusCancelled, cancelled.Status)
	s.Require().NotNil(cancelled.CancelledAt)
	s.Equal(s.clock.Now(), *cancelled.CancelledAt)
	s.Require().NotNil(cancelled.CancelReason)
	s.Equal("test", *cancelled.CancelReason)
	s.Equal(10, s.store.show(testShowID).AvailableSeats)
	s.Equal(
		[]domain.BookingEventType{domain.EventBookingCreated, domain.EventBookingCancelled},
		s.publisher.types(),
	)
}

func (s *ServiceTestSuite) TestCancelBookingTwiceIsReportedAndDoesNotRestoreAgain() {
	b, err := s.book(userOne, "A1", "A2")
	s.Require().NoError(err)

	_, err = s.cancel(b.ID, userOne, false)
	s.Require().NoError(err)

	_, err = s.cancel(b.ID, userOne, false)
	s.ErrorIs(err, domain.ErrAlreadyCancelled)
	s.Equal(10, s.store.show(testShowID).AvailableSeats)
}

func (s *ServiceTestSuite) TestCancelConfirmedBooking() {
	b, err := s.book(userOne, "A1")
	s.Require().NoError(err)

	_, err = s.service.ApplyPaymentResult(context.Background(), domain.PaymentResult{BookingID: b.ID, Succeeded: true})
	s.Require().NoError(err)

	cancelled, err := s.cancel(b.ID, userOne, false)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusCancelled, cancelled.Status)
	s.Equal(10, s.store.show(testShowID).AvailableSeats)
}

func (s *ServiceTestSuite) TestCancelBookingOwnership() {
	b, err := s.book(userOne, "A1", "A2")
	s.Require().NoError(err)

	_, err = s.cancel(b.ID, userTwo, false)
	s.ErrorIs(err, domain.ErrForbidden)

	stored, err := s.store.FindBookingByID(context.Background(), b.ID)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusCreated, stored.Status)
	s.Nil(stored.CancelledAt)
	s.Equal(8, s.store.show(testShowID).AvailableSeats)

	_, err = s.cancel(b.ID, userTwo, true)
	s.NoError(err)
	s.Equal(10, s.store.show(testShowID).AvailableSeats)
}

func (s *ServiceTestSuite) TestCancelBookingNotFound() {
	_, err := s.cancel(404, userOne, true)
	s.ErrorIs(err, domain.ErrBookingNotFound)
}

func (s *ServiceTestSuite) TestCancelFailedBookingIsInvalidTransition() {
	b, err := s.book(userOne, "A1")
	s.Require().NoError(err)

	_, err = s.service.ApplyPaymentResult(context.Background(), domain.PaymentResult{BookingID: b.ID, Succeeded: false})
	s.Require().NoError(err)

	_, err = s.cancel(b.ID, userOne, false)
	s.ErrorIs(err, domain.ErrInvalidTransition)
	s.Equal(10, s.store.show(testShowID).AvailableSeats)
}

func (s *ServiceTestSuite) TestCancelBookingWhenShowIsGone() {
	b, err := s.book(userOne, "A1")
	s.Require().NoError(err)

	s.store.mu.Lock()
	delete(s.store.shows, testShowID)
	s.store.mu.Unlock()

	cancelled, err := s.cancel(b.ID, userOne, false)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusCancelled, cancelled.Status)
}

func (s *ServiceTestSuite) TestCancelBookingReconcilesCommittedUnknownOutcome() {
	b, err := s.book(userOne, "A1", "A2")
	s.Require().NoError(err)

	s.store.injectFaults(txFault{err: domain.ErrCommitUnknown, apply: true})

	cancelled, err := s.cancel(b.ID, userOne, false)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusCancelled, cancelled.Status)
	s.Equal(10, s.store.show(testShowID).AvailableSeats)
}

func (s *ServiceTestSuite) TestEndToEndScenario() {
	first, err := s.book(userOne, "A1", "A2")
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusCreated, first.Status)
	s.Equal(8, s.store.show(testShowID).AvailableSeats)

	_, err = s.book(userTwo, "A2", "A3")
	s.Require().ErrorIs(err, domain.ErrSeatConflict)
	s.Equal(8, s.store.show(testShowID).AvailableSeats)

	cancelled, err := s.cancel(first.ID, userOne, false)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusCancelled, cancelled.Status)
	s.Equal(10, s.store.show(testShowID).AvailableSeats)

	_, err = s.book(userTwo, "A2", "A3")
	s.Require().NoError(err)
	s.Equal(8, s.store.show(testShowID).AvailableSeats)
}
