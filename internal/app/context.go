package app

import (
	"context"
	"net/http"

	"github.com/metinatakli/movie-booking-service/internal/domain"
)

type contextKey string

const requesterContextKey = contextKey("requester")

func (app *Application) contextSetRequester(r *http.Request, requester domain.Requester) *http.Request {
	ctx := context.WithValue(r.Context(), requesterContextKey, requester)
	return r.WithContext(ctx)
}

// contextGetRequester is only called from handlers behind
// requireAuthentication.
func (app *Application) contextGetRequester(r *http.Request) domain.Requester {
	requester, ok := r.Context().Value(requesterContextKey).(domain.Requester)
	if !ok {
		panic("missing requester value in request context")
	}

	return requester
}
