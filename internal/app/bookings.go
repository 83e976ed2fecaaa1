package app

import (
	"fmt"
	"net/http"

	"github.com/metinatakli/movie-booking-service/api"
	"github.com/metinatakli/movie-booking-service/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

func (app *Application) CreateBooking(w http.ResponseWriter, r *http.Request, params api.CreateBookingParams) {
	err := app.validator.Struct(params)
	if err != nil {
		app.invalidInputResponse(w, r, err)
		return
	}

	var input api.CreateBookingRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.invalidInputResponse(w, r, err)
		return
	}

	requester := app.contextGetRequester(r)

	req := domain.BookingRequest{
		UserID: requester.UserID,
		ShowID: input.ShowId,
		Seats:  input.Seats,
	}
	if params.IdempotencyKey != nil {
		req.RequestID = *params.IdempotencyKey
	}

	booking, err := app.bookingService.CreateBooking(r.Context(), req)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/bookings/%d", booking.ID))

	err = app.writeJSON(w, http.StatusCreated, api.BookingResponse{Booking: toApiBooking(booking)}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ListBookings(w http.ResponseWriter, r *http.Request, params api.ListBookingsParams) {
	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	requester := app.contextGetRequester(r)

	bookings, metadata, err := app.bookingService.ListBookings(r.Context(), requester, toPagination(params))
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.BookingsResponse{
		Bookings: toApiBookings(bookings),
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBooking(w http.ResponseWriter, r *http.Request, bookingId int) {
	requester := app.contextGetRequester(r)

	booking, err := app.bookingService.GetBooking(r.Context(), requester, bookingId)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.BookingResponse{Booking: toApiBooking(booking)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelBooking(w http.ResponseWriter, r *http.Request, bookingId int) {
	var input api.CancelBookingRequest

	if r.ContentLength != 0 {
		err := app.readJSON(w, r, &input)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}

		err = app.validator.Struct(input)
		if err != nil {
			app.failedValidationResponse(w, r, err)
			return
		}
	}

	requester := app.contextGetRequester(r)

	req := domain.CancelRequest{
		BookingID:   bookingId,
		RequesterID: requester.UserID,
		Privileged:  requester.Role.IsPrivileged(),
	}
	if input.Reason != nil {
		req.Reason = *input.Reason
	}

	booking, err := app.bookingService.CancelBooking(r.Context(), req)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.BookingResponse{Booking: toApiBooking(booking)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiBooking(b *domain.Booking) api.Booking {
	seats := b.Seats
	if seats == nil {
		seats = []string{}
	}

	return api.Booking{
		Id:           b.ID,
		UserId:       b.UserID,
		ShowId:       b.ShowID,
		MovieId:      b.MovieID,
		TheatreId:    b.TheatreID,
		ShowTime:     b.ShowTime,
		Seats:        seats,
		Status:       api.BookingStatus(b.Status),
		TotalAmount:  b.TotalAmount.StringFixed(2),
		Currency:     b.Currency,
		CancelledAt:  b.CancelledAt,
		CancelReason: b.CancelReason,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toApiBookings(bookings []domain.Booking) []api.Booking {
	result := make([]api.Booking, len(bookings))

	for i := range bookings {
		result[i] = toApiBooking(&bookings[i])
	}

	return result
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}

func toPagination(params api.ListBookingsParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	return pagination
}
