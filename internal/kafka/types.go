package kafka

import (
	"fmt"
	"time"

	"github.com/metinatakli/movie-booking-service/internal/domain"
)

const (
	TopicPaymentResults = "payment.results"

	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// PaymentResultEvent is published by the payment service once a payment
// attempt for a booking has settled.
type PaymentResultEvent struct {
	EventID           string    `json:"eventId"`
	BookingID         int       `json:"bookingId"`
	Status            string    `json:"status"`
	CheckoutSessionID string    `json:"checkoutSessionId,omitempty"`
	Reason            string    `json:"reason,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

func (e PaymentResultEvent) toPaymentResult() (domain.PaymentResult, error) {
	if e.BookingID <= 0 {
		return domain.PaymentResult{}, fmt.Errorf("payment result %s has no booking id", e.EventID)
	}

	var succeeded bool
	switch e.Status {
	case PaymentStatusSucceeded:
		succeeded = true
	case PaymentStatusFailed:
	default:
		return domain.PaymentResult{}, fmt.Errorf("payment result %s has unknown status %q", e.EventID, e.Status)
	}

	return domain.PaymentResult{
		BookingID:   e.BookingID,
		Succeeded:   succeeded,
		ProviderRef: e.CheckoutSessionID,
		Reason:      e.Reason,
	}, nil
}
