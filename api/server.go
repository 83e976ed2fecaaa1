package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /healthcheck)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (POST /shows)
	CreateShow(w http.ResponseWriter, r *http.Request)
	// (GET /shows/{showId})
	GetShow(w http.ResponseWriter, r *http.Request, showId int)
	// (GET /bookings)
	ListBookings(w http.ResponseWriter, r *http.Request, params ListBookingsParams)
	// (POST /bookings)
	CreateBooking(w http.ResponseWriter, r *http.Request, params CreateBookingParams)
	// (GET /bookings/{bookingId})
	GetBooking(w http.ResponseWriter, r *http.Request, bookingId int)
	// (PATCH /bookings/{bookingId}/cancel)
	CancelBooking(w http.ResponseWriter, r *http.Request, bookingId int)
	// (POST /bookings/{bookingId}/checkout)
	CreateCheckoutSession(w http.ResponseWriter, r *http.Request, bookingId int)
	// (POST /webhook)
	StripeWebhook(w http.ResponseWriter, r *http.Request)
}

type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper converts path, query and header parameters before
// handing the request to the ServerInterface.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetHealth(w, r)
	})
}

func (siw *ServerInterfaceWrapper) CreateShow(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateShow(w, r)
	})
}

func (siw *ServerInterfaceWrapper) GetShow(w http.ResponseWriter, r *http.Request) {
	showId, ok := siw.pathID(w, r, "showId")
	if !ok {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetShow(w, r, showId)
	})
}

func (siw *ServerInterfaceWrapper) ListBookings(w http.ResponseWriter, r *http.Request) {
	var err error

	var params ListBookingsParams

	err = runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &params.Page)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "page", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "pageSize", r.URL.Query(), &params.PageSize)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "pageSize", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListBookings(w, r, params)
	})
}

func (siw *ServerInterfaceWrapper) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var params CreateBookingParams

	if values, found := r.Header[http.CanonicalHeaderKey("Idempotency-Key")]; found {
		if len(values) != 1 {
			siw.ErrorHandlerFunc(w, r, &TooManyValuesForParamError{ParamName: "Idempotency-Key", Count: len(values)})
			return
		}

		var key string

		err := runtime.BindStyledParameterWithOptions("simple", "Idempotency-Key", values[0], &key,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: false})
		if err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "Idempotency-Key", Err: err})
			return
		}

		params.IdempotencyKey = &key
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateBooking(w, r, params)
	})
}

func (siw *ServerInterfaceWrapper) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingId, ok := siw.pathID(w, r, "bookingId")
	if !ok {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetBooking(w, r, bookingId)
	})
}

func (siw *ServerInterfaceWrapper) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingId, ok := siw.pathID(w, r, "bookingId")
	if !ok {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CancelBooking(w, r, bookingId)
	})
}

func (siw *ServerInterfaceWrapper) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	bookingId, ok := siw.pathID(w, r, "bookingId")
	if !ok {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateCheckoutSession(w, r, bookingId)
	})
}

func (siw *ServerInterfaceWrapper) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.StripeWebhook(w, r)
	})
}

func (siw *ServerInterfaceWrapper) pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	var id int

	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return 0, false
	}

	return id, true
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	handler := http.Handler(fn)

	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

type TooManyValuesForParamError struct {
	ParamName string
	Count     int
}

func (e *TooManyValuesForParamError) Error() string {
	return fmt.Sprintf("Expected one value for %s, got %d", e.ParamName, e.Count)
}
