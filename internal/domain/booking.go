package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusCreated   BookingStatus = "CREATED"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusFailed    BookingStatus = "FAILED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

// ActiveBookingStatuses are the statuses that hold seats.
var ActiveBookingStatuses = []BookingStatus{BookingStatusCreated, BookingStatusConfirmed}

func (s BookingStatus) IsActive() bool {
	return s == BookingStatusCreated || s == BookingStatusConfirmed
}

func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCancelled, BookingStatusFailed, BookingStatusExpired:
		return true
	}

	return false
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusCreated:
		return next == BookingStatusConfirmed ||
			next == BookingStatusFailed ||
			next == BookingStatusCancelled ||
			next == BookingStatusExpired
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	}

	return false
}

type Booking struct {
	ID           int
	RequestID    string
	UserID       int
	ShowID       int
	MovieID      int
	TheatreID    int
	ShowTime     time.Time
	Seats        []string
	Status       BookingStatus
	TotalAmount  decimal.Decimal
	Currency     string
	CancelledAt  *time.Time
	CancelReason *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (b *Booking) IsOwnedBy(userID int) bool {
	return b.UserID == userID
}

// Transition moves the booking to next, failing with ErrInvalidTransition
// when the state machine does not allow it.
func (b *Booking) Transition(next BookingStatus, now time.Time) error {
	if !b.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, b.Status, next)
	}

	b.Status = next
	b.UpdatedAt = now

	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Status == BookingStatusCancelled {
		return ErrAlreadyCancelled
	}

	err := b.Transition(BookingStatusCancelled, now)
	if err != nil {
		return err
	}

	b.CancelledAt = &now
	if reason != "" {
		b.CancelReason = &reason
	}

	return nil
}

type BookingRequest struct {
	UserID    int
	ShowID    int
	Seats     []string
	RequestID string
}

type CancelRequest struct {
	BookingID   int
	RequesterID int
	Privileged  bool
	Reason      string
}

// PaymentResult is the outcome of a payment attempt as reported by the
// payment provider. ProviderRef, when set, identifies the checkout session.
type PaymentResult struct {
	BookingID   int
	Succeeded   bool
	ProviderRef string
	Reason      string
}

type Requester struct {
	UserID int
	Role   Role
}

func (r Requester) CanAccess(b *Booking) bool {
	return r.Role.IsPrivileged() || b.IsOwnedBy(r.UserID)
}

type BookingFilter struct {
	UserID     *int
	Pagination Pagination
}

type BookingService interface {
	CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error)
	CancelBooking(ctx context.Context, req CancelRequest) (*Booking, error)
	ApplyPaymentResult(ctx context.Context, result PaymentResult) (*Booking, error)
	ListBookings(ctx context.Context, requester Requester, pagination Pagination) ([]Booking, *Metadata, error)
	GetBooking(ctx context.Context, requester Requester, id int) (*Booking, error)
	Occupancy(ctx context.Context, showID int) ([]string, error)
}
