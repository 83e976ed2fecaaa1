package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrEditConflict      = errors.New("edit conflict")
	ErrShowNotFound      = errors.New("show not found")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrSeatConflict      = errors.New("seat(s) are already booked")
	ErrCapacityExceeded  = errors.New("not enough seats available")
	ErrForbidden         = errors.New("not authorized to access this booking")
	ErrAlreadyCancelled  = errors.New("booking already cancelled")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrInvalidSeats      = errors.New("invalid seat selection")
	ErrDuplicateRequest  = errors.New("duplicate booking request")
	ErrDuplicateShow     = errors.New("a show already starts on this screen at that time")
	ErrTransient         = errors.New("transient store failure")
	ErrCommitUnknown     = errors.New("transaction commit outcome unknown")
)

// SeatConflictError lists every requested seat that an active booking
// already holds. It matches ErrSeatConflict with errors.Is.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	if len(e.Seats) == 1 {
		return fmt.Sprintf("seat %s is already booked", e.Seats[0])
	}

	return fmt.Sprintf("seats %s are already booked", strings.Join(e.Seats, ", "))
}

func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}
