package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/metinatakli/movie-booking-service/internal/domain"
)

const (
	constraintUserRequest    = "bookings_user_request_key"
	constraintAvailableSeats = "shows_available_seats_check"
	constraintShowSlot       = "shows_theatre_screen_start_key"
)

// classifyError maps driver errors onto the domain taxonomy. Errors that are
// already domain errors pass through unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, domain.ErrCommitUnknown) || errors.Is(err, domain.ErrTransient) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			switch pgErr.ConstraintName {
			case constraintUserRequest:
				return fmt.Errorf("%w: %w", domain.ErrDuplicateRequest, err)
			case constraintShowSlot:
				return fmt.Errorf("%w: %w", domain.ErrDuplicateShow, err)
			}
		case pgerrcode.CheckViolation:
			if pgErr.ConstraintName == constraintAvailableSeats {
				return fmt.Errorf("%w: %w", domain.ErrCapacityExceeded, err)
			}
		case pgerrcode.SerializationFailure,
			pgerrcode.DeadlockDetected,
			pgerrcode.LockNotAvailable,
			pgerrcode.QueryCanceled,
			pgerrcode.AdminShutdown,
			pgerrcode.CannotConnectNow,
			pgerrcode.TooManyConnections:
			return fmt.Errorf("%w: %w", domain.ErrTransient, err)
		}

		return err
	}

	var connectErr *pgconn.ConnectError
	switch {
	case errors.As(err, &connectErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, pgx.ErrTxCommitRollback),
		pgconn.Timeout(err),
		pgconn.SafeToRetry(err):
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	}

	return err
}

// commitError wraps a failed COMMIT. A server verdict means the transaction
// did not commit; anything else leaves the outcome unknown.
func commitError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) || errors.Is(err, pgx.ErrTxCommitRollback) {
		return classifyError(err)
	}

	return fmt.Errorf("%w: %w", domain.ErrCommitUnknown, err)
}
