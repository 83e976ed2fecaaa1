package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/metinatakli/movie-booking-service/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const metadataBookingID = "booking_id"

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// WebhookParser verifies Stripe webhook deliveries and turns checkout events
// into payment results.
type WebhookParser struct {
	secret string
}

func NewWebhookParser(secret string) *WebhookParser {
	return &WebhookParser{
		secret: secret,
	}
}

// Parse returns nil without error for events that carry no payment outcome.
func (p *WebhookParser) Parse(payload []byte, signature string) (*domain.PaymentResult, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	var succeeded bool
	var reason string

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		succeeded = true
	case "checkout.session.async_payment_failed":
		reason = "payment failed"
	case "checkout.session.expired":
		reason = "checkout session expired"
	default:
		return nil, nil
	}

	var cs stripe.CheckoutSession
	err = json.Unmarshal(event.Data.Raw, &cs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	// A completed session with a delayed payment method settles later
	// through the async events.
	if event.Type == "checkout.session.completed" && cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		return nil, nil
	}

	bookingID, err := bookingIDFromSession(&cs)
	if err != nil {
		return nil, err
	}

	return &domain.PaymentResult{
		BookingID:   bookingID,
		Succeeded:   succeeded,
		ProviderRef: cs.ID,
		Reason:      reason,
	}, nil
}

func bookingIDFromSession(cs *stripe.CheckoutSession) (int, error) {
	raw := cs.Metadata[metadataBookingID]
	if raw == "" {
		raw = cs.ClientReferenceID
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: checkout session %s has no booking id", ErrMalformedEvent, cs.ID)
	}

	return id, nil
}
