package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/metinatakli/movie-booking-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

type StripePaymentProvider struct {
	failureUrl string
	successUrl string
}

func NewStripePaymentProvider(failureUrl, successUrl string) *StripePaymentProvider {
	return &StripePaymentProvider{
		failureUrl: failureUrl,
		successUrl: successUrl,
	}
}

// CreateCheckoutSession opens a hosted checkout with one line item per seat.
func (s *StripePaymentProvider) CreateCheckoutSession(
	ctx context.Context,
	booking *domain.Booking,
	payment *domain.Payment) (*domain.CheckoutSession, error) {

	params := checkoutSessionParams(booking, payment, s.successUrl, s.failureUrl)
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}

	return &domain.CheckoutSession{
		ID:  sess.ID,
		URL: sess.URL,
	}, nil
}

func checkoutSessionParams(
	booking *domain.Booking,
	payment *domain.Payment,
	successUrl, failureUrl string) *stripe.CheckoutSessionParams {

	seatPrice := booking.TotalAmount.Div(decimal.NewFromInt(int64(len(booking.Seats))))
	priceCents := seatPrice.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	currency := strings.ToLower(booking.Currency)

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(booking.Seats))

	for _, seat := range booking.Seats {
		lineItem := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(priceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("Seat %s", seat)),
					Description: stripe.String(fmt.Sprintf(
						"Show #%d • Showtime: %s",
						booking.ShowID,
						booking.ShowTime.Format("Jan 2, 2006 15:04"),
					)),
				},
			},
			Quantity: stripe.Int64(1),
		}

		lineItems = append(lineItems, lineItem)
	}

	return &stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successUrl),
		CancelURL:  stripe.String(failureUrl),
		Metadata: map[string]string{
			metadataBookingID: strconv.Itoa(booking.ID),
			"payment_id":      strconv.Itoa(payment.ID),
			"user_id":         strconv.Itoa(booking.UserID),
		},
		ClientReferenceID: stripe.String(strconv.Itoa(booking.ID)),
	}
}
