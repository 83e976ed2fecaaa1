package booking

import (
	"context"

	"github.com/metinatakli/movie-booking-service/internal/domain"
)

func (s *ServiceTestSuite) TestApplyPaymentResultSuccess() {
	b, err := s.book(userOne, "A1", "A2")
	s.Require().NoError(err)

	confirmed, err := s.service.ApplyPaymentResult(context.Background(), domain.PaymentResult{
		BookingID:   b.ID,
		Succeeded:   true,
		ProviderRef: "cs_test_1",
	})
	s.Require().NoError(err)

	s.Equal(domain.BookingStatusConfirmed, confirmed.Status)
	s.Equal(8, s.store.show(testShowID).AvailableSeats)
	s.Equal(domain.PaymentStatusCompleted, s.store.payments["cs_test_1"])
	s.Equal(
		[]domain.BookingEventType{domain.EventBookingCreated, domain.EventBookingConfirmed},
		s.publisher.types(),
	)
}

func (s *ServiceTestSuite) TestApplyPaymentResultFailureReleasesSeats() {
	b, err := s.book(userOne, "A1", "A2")
	s.Require().NoError(err)

	failed, err := s.service.ApplyPaymentResult(context.Background(), domain.PaymentResult{
		BookingID:   b.ID,
		Succeeded:   false,
		ProviderRef: "cs_test_2",
		Reason:      "card declined",
	})
	s.Require().NoError(err)

	s.Equal(domain.BookingStatusFailed, failed.Status)
	s.Equal(10, s.store.show(testShowID).AvailableSeats)
	s.Equal(domain.PaymentStatusFailed, s.store.payments["cs_test_2"])

	_, err = s.book(userTwo, "A1")
	s.NoError(err)
}

func (s *ServiceTestSuite) TestApplyPaymentResultIsIdempotent() {
	b, err := s.book(userOne, "A1")
	s.Require().NoError(err)

	for range 2 {
		_, err = s.service.ApplyPaymentResult(context.Background(), domain.PaymentResult{BookingID: b.ID, Succeeded: false})
		s.Require().NoError(err)
	}

	s.Equal(10, s.store.show(testShowID).AvailableSeats)
	s.Equal(
		[]domain.BookingEventType{domain.EventBookingCreated, domain.EventBookingFailed},
		s.publisher.types(),
	)
}

func (s *ServiceTestSuite) TestApplyPaymentResultInvalidTransitions() {
	b, err := s.book(userOne, "A1")
	s.Require().NoError(err)

	_, err = s.cancel(b.ID, userOne, false)
	s.Require().NoError(err)

	_, err = s.service.ApplyPaymentResult(context.Background(), domain.PaymentResult{BookingID: b.ID, Succeeded: true})
	s.ErrorIs(err, domain.ErrInvalidTransition)

	_, err = s.service.ApplyPaymentResult(context.Background(), domain.PaymentResult{BookingID: b.ID, Succeeded: false})
	s.ErrorIs(err, domain.ErrInvalidTransition)
	s.Equal(10, s.store.show(testShowID).AvailableSeats)

	_, err = s.service.ApplyPaymentResult(context.Background(), domain.PaymentResult{BookingID: 404, Succeeded: true})
	s.ErrorIs(err, domain.ErrBookingNotFound)
}

func (s *ServiceTestSuite) TestConfirmedBookingCannotFail() {
	b, err := s.book(userOne, "A1")
	s.Require().NoError(err)

	_, err = s.service.ApplyPaymentResult(context.Background(), domain.PaymentResult{BookingID: b.ID, Succeeded: true})
	s.Require().NoError(err)

	_, err = s.service.ApplyPaymentResult(context.Background(), domain.PaymentResult{BookingID: b.ID, Succeeded: false})
	s.ErrorIs(err, domain.ErrInvalidTransition)
	s.Equal(9, s.store.show(testShowID).AvailableSeats)
}
