package domain

import (
	"context"
	"time"
)

// InventoryStore is the durable record of show seat counts and bookings.
// Multi-step changes go through RunInTx; the remaining methods are plain reads.
type InventoryStore interface {
	RunInTx(ctx context.Context, fn func(tx InventoryTx) error) error
	FindBookingByID(ctx context.Context, id int) (*Booking, error)
	FindBookingByRequestID(ctx context.Context, userID int, requestID string) (*Booking, error)
	FindActiveBookings(ctx context.Context, showID int) ([]Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, *Metadata, error)
	FindStalePendingBookings(ctx context.Context, createdBefore time.Time, limit int) ([]Booking, error)
}

// InventoryTx is the view of the store inside one transaction. Callers lock
// the show row before any booking row.
type InventoryTx interface {
	GetShowForUpdate(ctx context.Context, id int) (*Show, error)
	SaveShow(ctx context.Context, show *Show) error
	FindActiveBookings(ctx context.Context, showID int) ([]Booking, error)
	CreateBooking(ctx context.Context, booking *Booking) error
	FindBookingByID(ctx context.Context, id int) (*Booking, error)
	FindBookingByIDForUpdate(ctx context.Context, id int) (*Booking, error)
	SaveBooking(ctx context.Context, booking *Booking) error
	SetPaymentStatus(ctx context.Context, checkoutSessionID string, status PaymentStatus, errMsg string) error
}
