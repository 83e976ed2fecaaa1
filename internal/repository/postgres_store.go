package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-service/internal/domain"
)

// querier is the subset shared by the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresInventoryStore struct {
	db        *pgxpool.Pool
	txTimeout time.Duration
}

func NewPostgresInventoryStore(db *pgxpool.Pool, txTimeout time.Duration) *PostgresInventoryStore {
	return &PostgresInventoryStore{
		db:        db,
		txTimeout: txTimeout,
	}
}

func (p *PostgresInventoryStore) RunInTx(ctx context.Context, fn func(tx domain.InventoryTx) error) error {
	if p.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.txTimeout)
		defer cancel()
	}

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		return fn(&postgresInventoryTx{tx: tx})
	})

	return classifyError(err)
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	txOptions := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	err = fn(tx)
	if err == nil {
		err = tx.Commit(ctx)
		if err != nil {
			return commitError(err)
		}

		return nil
	}

	rollbackErr := tx.Rollback(context.WithoutCancel(ctx))
	if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
		return errors.Join(err, rollbackErr)
	}

	return err
}

func (p *PostgresInventoryStore) FindBookingByID(ctx context.Context, id int) (*domain.Booking, error) {
	return findBookingByID(ctx, p.db, id, false)
}

func (p *PostgresInventoryStore) FindBookingByRequestID(
	ctx context.Context,
	userID int,
	requestID string) (*domain.Booking, error) {

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 AND request_id = $2`

	booking, err := scanBooking(p.db.QueryRow(ctx, query, userID, requestID))
	if err != nil {
		return nil, classifyError(err)
	}

	return booking, nil
}

func (p *PostgresInventoryStore) FindActiveBookings(ctx context.Context, showID int) ([]domain.Booking, error) {
	bookings, err := findActiveBookings(ctx, p.db, showID)
	return bookings, classifyError(err)
}

func (p *PostgresInventoryStore) ListBookings(
	ctx context.Context,
	filter domain.BookingFilter) ([]domain.Booking, *domain.Metadata, error) {

	query := `
		SELECT COUNT(*) OVER(), ` + bookingColumns + `
		FROM bookings
		WHERE ($1::integer IS NULL OR user_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, filter.UserID, filter.Pagination.Limit(), filter.Pagination.Offset())
	if err != nil {
		return nil, nil, classifyError(err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	totalRecords := 0

	for rows.Next() {
		var b domain.Booking

		dest := append([]any{&totalRecords}, bookingDest(&b)...)
		err = rows.Scan(dest...)
		if err != nil {
			return nil, nil, err
		}

		bookings = append(bookings, b)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, classifyError(err)
	}

	metadata := domain.NewMetadata(totalRecords, filter.Pagination.Page, filter.Pagination.PageSize)

	return bookings, metadata, nil
}

func (p *PostgresInventoryStore) FindStalePendingBookings(
	ctx context.Context,
	createdBefore time.Time,
	limit int) ([]domain.Booking, error) {

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'CREATED' AND created_at < $1
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := p.db.Query(ctx, query, createdBefore, limit)
	if err != nil {
		return nil, classifyError(err)
	}

	bookings, err := collectBookings(rows)
	return bookings, classifyError(err)
}
