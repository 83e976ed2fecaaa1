package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-service/internal/domain"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			booking_id,
			user_id,
			amount,
			currency,
			status
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		payment.BookingID,
		payment.UserID,
		payment.Amount,
		payment.Currency,
		payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt)

	return classifyError(err)
}

func (p *PostgresPaymentRepository) AttachCheckoutSession(
	ctx context.Context,
	paymentID int,
	checkoutSessionID string) error {

	query := `
		UPDATE payments
		SET stripe_checkout_session_id = $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := p.db.Exec(ctx, query, checkoutSessionID, paymentID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresPaymentRepository) GetByCheckoutSessionId(
	ctx context.Context,
	checkoutSessionID string) (*domain.Payment, error) {

	query := `
		SELECT id, booking_id, user_id, stripe_checkout_session_id, amount, currency,
			status, error_message, payment_date, created_at, updated_at
		FROM payments
		WHERE stripe_checkout_session_id = $1
	`

	var payment domain.Payment

	err := p.db.QueryRow(ctx, query, checkoutSessionID).Scan(
		&payment.ID,
		&payment.BookingID,
		&payment.UserID,
		&payment.CheckoutSessionId,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.ErrorMsg,
		&payment.PaymentDate,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &payment, nil
}
