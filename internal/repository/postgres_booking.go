package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/metinatakli/movie-booking-service/internal/domain"
)

const bookingColumns = `id, request_id, user_id, show_id, movie_id, theatre_id, show_time, seats,
	status, total_amount, currency, cancelled_at, cancel_reason, created_at, updated_at`

type postgresInventoryTx struct {
	tx pgx.Tx
}

func (t *postgresInventoryTx) GetShowForUpdate(ctx context.Context, id int) (*domain.Show, error) {
	query := `SELECT ` + showColumns + ` FROM shows WHERE id = $1 FOR UPDATE`

	show, err := scanShow(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	return show, nil
}

// SaveShow writes the seat count back with a compare-and-swap on version.
func (t *postgresInventoryTx) SaveShow(ctx context.Context, show *domain.Show) error {
	query := `
		UPDATE shows
		SET available_seats = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
		RETURNING version, updated_at
	`

	err := t.tx.QueryRow(ctx, query, show.AvailableSeats, show.ID, show.Version).
		Scan(&show.Version, &show.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEditConflict
		}

		return err
	}

	return nil
}

func (t *postgresInventoryTx) FindActiveBookings(ctx context.Context, showID int) ([]domain.Booking, error) {
	return findActiveBookings(ctx, t.tx, showID)
}

func (t *postgresInventoryTx) CreateBooking(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (
			request_id,
			user_id,
			show_id,
			movie_id,
			theatre_id,
			show_time,
			seats,
			status,
			total_amount,
			currency
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	return t.tx.QueryRow(
		ctx,
		query,
		b.RequestID,
		b.UserID,
		b.ShowID,
		b.MovieID,
		b.TheatreID,
		b.ShowTime,
		b.Seats,
		b.Status,
		b.TotalAmount,
		b.Currency,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (t *postgresInventoryTx) FindBookingByID(ctx context.Context, id int) (*domain.Booking, error) {
	return findBookingByID(ctx, t.tx, id, false)
}

func (t *postgresInventoryTx) FindBookingByIDForUpdate(ctx context.Context, id int) (*domain.Booking, error) {
	return findBookingByID(ctx, t.tx, id, true)
}

func (t *postgresInventoryTx) SaveBooking(ctx context.Context, b *domain.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, cancelled_at = $2, cancel_reason = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`

	err := t.tx.QueryRow(ctx, query, b.Status, b.CancelledAt, b.CancelReason, b.ID).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRecordNotFound
		}

		return err
	}

	return nil
}

// SetPaymentStatus updates the payment bound to a checkout session. A missing
// payment row is not an error since results may arrive without one.
func (t *postgresInventoryTx) SetPaymentStatus(
	ctx context.Context,
	checkoutSessionID string,
	status domain.PaymentStatus,
	errMsg string) error {

	query := `
		UPDATE payments
		SET status = $1,
			error_message = NULLIF($2, ''),
			payment_date = CASE WHEN $3 THEN NOW() ELSE payment_date END,
			updated_at = NOW()
		WHERE stripe_checkout_session_id = $4
	`

	_, err := t.tx.Exec(ctx, query, status, errMsg, status == domain.PaymentStatusCompleted, checkoutSessionID)
	return err
}

func findBookingByID(ctx context.Context, q querier, id int, forUpdate bool) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	return scanBooking(q.QueryRow(ctx, query, id))
}

func findActiveBookings(ctx context.Context, q querier, showID int) ([]domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE show_id = $1 AND status IN ('CREATED', 'CONFIRMED')
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, showID)
	if err != nil {
		return nil, err
	}

	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)

	for rows.Next() {
		var b domain.Booking

		err := rows.Scan(bookingDest(&b)...)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func bookingDest(b *domain.Booking) []any {
	return []any{
		&b.ID,
		&b.RequestID,
		&b.UserID,
		&b.ShowID,
		&b.MovieID,
		&b.TheatreID,
		&b.ShowTime,
		&b.Seats,
		&b.Status,
		&b.TotalAmount,
		&b.Currency,
		&b.CancelledAt,
		&b.CancelReason,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking

	err := row.Scan(bookingDest(&b)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &b, nil
}
