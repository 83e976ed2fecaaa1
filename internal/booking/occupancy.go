package booking

import (
	"context"
	"slices"

	"github.com/metinatakli/movie-booking-service/internal/domain"
)

// resolveOccupancy returns the union of seats held by active bookings.
func resolveOccupancy(bookings []domain.Booking) map[string]struct{} {
	occupied := make(map[string]struct{})

	for _, b := range bookings {
		if !b.Status.IsActive() {
			continue
		}

		for _, seat := range b.Seats {
			occupied[seat] = struct{}{}
		}
	}

	return occupied
}

// conflictingSeats returns the requested seats that are already occupied,
// in request order.
func conflictingSeats(requested []string, occupied map[string]struct{}) []string {
	var conflicts []string

	for _, seat := range requested {
		if _, ok := occupied[seat]; ok {
			conflicts = append(conflicts, seat)
		}
	}

	return conflicts
}

// Occupancy returns the sorted seat labels currently held on a show.
func (s *Service) Occupancy(ctx context.Context, showID int) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Occupancy")
	defer span.End()

	bookings, err := withRetry(ctx, s, "occupancy", func() ([]domain.Booking, error) {
		return s.store.FindActiveBookings(ctx, showID)
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	occupied := resolveOccupancy(bookings)

	seats := make([]string, 0, len(occupied))
	for seat := range occupied {
		seats = append(seats, seat)
	}
	slices.Sort(seats)

	return seats, nil
}
