package app

import (
	"context"
	"net/http"
	"time"

	"github.com/metinatakli/movie-booking-service/api"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := statusUp
	dependencies := make(map[string]string)

	if app.db != nil {
		dependencies["postgres"] = statusUp
		if err := app.db.Ping(ctx); err != nil {
			app.logger.WarnContext(ctx, "postgres health check failed", "error", err)
			dependencies["postgres"] = statusDown
			status = statusDown
		}
	}

	if app.redis != nil {
		dependencies["redis"] = statusUp
		if err := app.redis.Ping(ctx).Err(); err != nil {
			app.logger.WarnContext(ctx, "redis health check failed", "error", err)
			dependencies["redis"] = statusDown
			status = statusDown
		}
	}

	systemInfo := api.SystemInfo{
		Version:     version,
		Environment: app.config.Env,
	}

	resp := api.HealthcheckResponse{
		Status:       status,
		SystemInfo:   systemInfo,
		Dependencies: dependencies,
	}

	code := http.StatusOK
	if status != statusUp {
		code = http.StatusServiceUnavailable
	}

	err := app.writeJSON(w, code, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
