package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "USD"

type Show struct {
	ID             int
	MovieID        int
	TheatreID      int
	ScreenName     string
	StartTime      time.Time
	EndTime        time.Time
	Price          decimal.Decimal
	Currency       string
	TotalSeats     int
	AvailableSeats int
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Reserve takes n seats off the available count.
func (s *Show) Reserve(n int) error {
	if n > s.AvailableSeats {
		return ErrCapacityExceeded
	}

	s.AvailableSeats -= n

	return nil
}

// Release gives n seats back, never exceeding TotalSeats. It returns false
// when the count had to be clamped, which means the inventory had drifted.
func (s *Show) Release(n int) bool {
	s.AvailableSeats += n
	if s.AvailableSeats > s.TotalSeats {
		s.AvailableSeats = s.TotalSeats
		return false
	}

	return true
}

func (s *Show) PriceFor(seats int) decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(seats)))
}

type ShowRepository interface {
	Create(ctx context.Context, show *Show) error
	GetById(ctx context.Context, id int) (*Show, error)
}
