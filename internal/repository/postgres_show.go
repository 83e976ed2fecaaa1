package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-service/internal/domain"
)

const showColumns = `id, movie_id, theatre_id, screen_name, start_time, end_time, price, currency,
	total_seats, available_seats, version, created_at, updated_at`

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

// Create inserts a show with every seat available.
func (p *PostgresShowRepository) Create(ctx context.Context, show *domain.Show) error {
	query := `
		INSERT INTO shows (
			movie_id,
			theatre_id,
			screen_name,
			start_time,
			end_time,
			price,
			currency,
			total_seats,
			available_seats
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id, available_seats, version, created_at, updated_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		show.MovieID,
		show.TheatreID,
		show.ScreenName,
		show.StartTime,
		show.EndTime,
		show.Price,
		show.Currency,
		show.TotalSeats,
	).Scan(&show.ID, &show.AvailableSeats, &show.Version, &show.CreatedAt, &show.UpdatedAt)

	return classifyError(err)
}

func (p *PostgresShowRepository) GetById(ctx context.Context, id int) (*domain.Show, error) {
	query := `SELECT ` + showColumns + ` FROM shows WHERE id = $1`

	show, err := scanShow(p.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, classifyError(err)
	}

	return show, nil
}

func scanShow(row pgx.Row) (*domain.Show, error) {
	var s domain.Show

	err := row.Scan(
		&s.ID,
		&s.MovieID,
		&s.TheatreID,
		&s.ScreenName,
		&s.StartTime,
		&s.EndTime,
		&s.Price,
		&s.Currency,
		&s.TotalSeats,
		&s.AvailableSeats,
		&s.Version,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &s, nil
}
