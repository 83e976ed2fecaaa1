package app

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/metinatakli/movie-booking-service/internal/domain"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		header := r.Header.Get("Authorization")
		if header == "" {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		requester, err := app.parseAccessToken(token)
		if err != nil {
			app.logger.DebugContext(r.Context(), "rejected access token", "error", err)
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		next.ServeHTTP(w, app.contextSetRequester(r, requester))
	})
}

func (app *Application) requireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requester := app.contextGetRequester(r)

			if !slices.Contains(roles, requester.Role) {
				app.forbiddenResponse(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
