package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/movie-booking-service/api"
	"github.com/metinatakli/movie-booking-service/internal/domain"
	appvalidator "github.com/metinatakli/movie-booking-service/internal/validator"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrMethodNotAllowed   = "The %s method is not supported for this resource"
	ErrUnauthorizedAccess = "You must be authenticated to access this resource"
	ErrInvalidToken       = "Invalid or expired authentication token"
	ErrForbidden          = "You do not have permission to perform this action"
	ErrFailedValidation   = "One or more fields are invalid"
	ErrServiceUnavailable = "The service is temporarily unavailable, please try again"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.ErrorContext(r.Context(), err.Error(),
		"method", method,
		"uri", uri,
		"request_id", middleware.GetReqID(r.Context()))
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeErrorResponse(w, r, status, api.ErrorResponse{Message: message})
}

func (app *Application) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, resp api.ErrorResponse) {
	resp.RequestId = middleware.GetReqID(r.Context())
	resp.Timestamp = time.Now()

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) serviceUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	w.Header().Set("Retry-After", "1")
	app.errorResponse(w, r, http.StatusServiceUnavailable, ErrServiceUnavailable)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusNotFound, err.Error())
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, fmt.Sprintf(ErrMethodNotAllowed, r.Method))
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) invalidParamResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.badRequestResponse(w, r, err)
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.errorResponse(w, r, http.StatusUnauthorized, ErrUnauthorizedAccess)
}

func (app *Application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.errorResponse(w, r, http.StatusUnauthorized, ErrInvalidToken)
}

func (app *Application) forbiddenResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, ErrForbidden)
}

func (app *Application) editConflictResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusConflict, err.Error())
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.validationErrorResponse(w, r, http.StatusUnprocessableEntity, err)
}

// invalidInputResponse reports field errors with a 400 status. Booking
// creation treats every rejected input as a bad request.
func (app *Application) invalidInputResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.validationErrorResponse(w, r, http.StatusBadRequest, err)
}

func (app *Application) validationErrorResponse(w http.ResponseWriter, r *http.Request, status int, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Message:          ErrFailedValidation,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: make([]api.ValidationError, 0, len(validationErrors)),
	}

	for _, fe := range validationErrors {
		resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
			Field: fe.Field(),
			Issue: appvalidator.ValidationMessage(fe),
		})
	}

	err = app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

// bookingErrorResponse maps errors returned by the booking service onto
// HTTP responses.
func (app *Application) bookingErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var seatConflict *domain.SeatConflictError

	switch {
	case errors.As(err, &seatConflict):
		seats := seatConflict.Seats
		app.writeErrorResponse(w, r, http.StatusConflict, api.ErrorResponse{
			Message:          seatConflict.Error(),
			ConflictingSeats: &seats,
		})
	case errors.Is(err, domain.ErrShowNotFound):
		app.notFoundResponseWithErr(w, r, domain.ErrShowNotFound)
	case errors.Is(err, domain.ErrBookingNotFound):
		app.notFoundResponseWithErr(w, r, domain.ErrBookingNotFound)
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, domain.ErrInvalidSeats):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, domain.ErrAlreadyCancelled):
		app.badRequestResponse(w, r, domain.ErrAlreadyCancelled)
	case errors.Is(err, domain.ErrForbidden):
		app.forbiddenResponse(w, r)
	case errors.Is(err, domain.ErrCapacityExceeded):
		app.editConflictResponseWithErr(w, r, domain.ErrCapacityExceeded)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateRequest),
		errors.Is(err, domain.ErrDuplicateShow):
		app.editConflictResponseWithErr(w, r, err)
	case errors.Is(err, domain.ErrTransient),
		errors.Is(err, domain.ErrCommitUnknown),
		errors.Is(err, domain.ErrEditConflict):
		app.serviceUnavailableResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
