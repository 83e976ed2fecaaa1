package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/metinatakli/movie-booking-service/api"
	"github.com/metinatakli/movie-booking-service/internal/domain"
	"github.com/metinatakli/movie-booking-service/internal/payment"
)

const maxWebhookBytes = 65536

func (app *Application) CreateCheckoutSession(w http.ResponseWriter, r *http.Request, bookingId int) {
	requester := app.contextGetRequester(r)

	booking, err := app.bookingService.GetBooking(r.Context(), requester, bookingId)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	if !booking.IsOwnedBy(requester.UserID) {
		app.forbiddenResponse(w, r)
		return
	}

	if booking.Status != domain.BookingStatusCreated {
		app.editConflictResponseWithErr(w, r, fmt.Errorf("booking is %s and cannot be paid", booking.Status))
		return
	}

	pendingPayment := &domain.Payment{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		Amount:    booking.TotalAmount,
		Currency:  booking.Currency,
		Status:    domain.PaymentStatusPending,
	}

	err = app.paymentRepo.Create(r.Context(), pendingPayment)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	checkoutSession, err := app.paymentProvider.CreateCheckoutSession(r.Context(), booking, pendingPayment)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.paymentRepo.AttachCheckoutSession(r.Context(), pendingPayment.ID, checkoutSession.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.logger.InfoContext(r.Context(), "checkout session created",
		"booking_id", booking.ID,
		"payment_id", pendingPayment.ID,
		"checkout_session_id", checkoutSession.ID)

	resp := api.CheckoutSessionResponse{
		RedirectUrl: checkoutSession.URL,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// StripeWebhook applies payment outcomes reported by Stripe. Outcomes the
// booking can no longer take are acknowledged so that Stripe stops
// redelivering them.
func (app *Application) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		app.badRequestResponse(w, r, errors.New("unable to read webhook body"))
		return
	}

	result, err := app.webhookParser.Parse(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature):
			app.logger.WarnContext(r.Context(), "rejected webhook", "error", err)
			app.badRequestResponse(w, r, payment.ErrInvalidSignature)
		case errors.Is(err, payment.ErrMalformedEvent):
			app.badRequestResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if result != nil {
		_, err = app.bookingService.ApplyPaymentResult(r.Context(), *result)

		switch {
		case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrInvalidTransition):
			app.logger.WarnContext(r.Context(), "ignoring stale payment result",
				"booking_id", result.BookingID,
				"succeeded", result.Succeeded,
				"error", err)
		case err != nil:
			app.bookingErrorResponse(w, r, err)
			return
		}
	}

	err = app.writeJSON(w, http.StatusOK, api.WebhookResponse{Received: true}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
