package app

import (
	"errors"
	"net/http"

	"github.com/metinatakli/movie-booking-service/api"
	"github.com/metinatakli/movie-booking-service/internal/domain"
)

func (app *Application) CreateShow(w http.ResponseWriter, r *http.Request) {
	var input api.CreateShowRequest

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

	show := &domain.Show{
		MovieID:    input.MovieId,
		TheatreID:  input.TheatreId,
		ScreenName: input.ScreenName,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		Price:      input.Price,
		Currency:   domain.DefaultCurrency,
		TotalSeats: input.TotalSeats,
	}

	if input.Currency != nil {
		show.Currency = *input.Currency
	}

	err = app.showRepo.Create(r.Context(), show)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	app.logger.InfoContext(r.Context(), "show created",
		"show_id", show.ID,
		"movie_id", show.MovieID,
		"theatre_id", show.TheatreID,
		"total_seats", show.TotalSeats)

	resp := api.ShowResponse{
		Show: toApiShow(show, []string{}),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetShow(w http.ResponseWriter, r *http.Request, showId int) {
	show, err := app.showRepo.GetById(r.Context(), showId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, domain.ErrShowNotFound)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	occupied, err := app.bookingService.Occupancy(r.Context(), showId)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.ShowResponse{
		Show: toApiShow(show, occupied),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiShow(show *domain.Show, occupied []string) api.Show {
	if occupied == nil {
		occupied = []string{}
	}

	return api.Show{
		Id:             show.ID,
		MovieId:        show.MovieID,
		TheatreId:      show.TheatreID,
		ScreenName:     show.ScreenName,
		StartTime:      show.StartTime,
		EndTime:        show.EndTime,
		Price:          show.Price.StringFixed(2),
		Currency:       show.Currency,
		TotalSeats:     show.TotalSeats,
		AvailableSeats: show.AvailableSeats,
		OccupiedSeats:  occupied,
	}
}
