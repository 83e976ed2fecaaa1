package domain

import (
	"fmt"
	"strings"
)

// ValidateSeatLabels checks that a seat request is non-empty and that every
// label is present and unique within the request.
func ValidateSeatLabels(seats []string) error {
	if len(seats) == 0 {
		return fmt.Errorf("%w: at least one seat is required", ErrInvalidSeats)
	}

	seen := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		if strings.TrimSpace(seat) == "" {
			return fmt.Errorf("%w: seat label must not be blank", ErrInvalidSeats)
		}

		if _, ok := seen[seat]; ok {
			return fmt.Errorf("%w: seat %s is requested more than once", ErrInvalidSeats, seat)
		}

		seen[seat] = struct{}{}
	}

	return nil
}
