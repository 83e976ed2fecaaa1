package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingEventType string

const (
	EventBookingCreated   BookingEventType = "booking.created"
	EventBookingConfirmed BookingEventType = "booking.confirmed"
	EventBookingCancelled BookingEventType = "booking.cancelled"
	EventBookingFailed    BookingEventType = "booking.failed"
	EventBookingExpired   BookingEventType = "booking.expired"
)

type BookingEvent struct {
	ID          string           `json:"id"`
	Type        BookingEventType `json:"type"`
	BookingID   int              `json:"bookingId"`
	UserID      int              `json:"userId"`
	ShowID      int              `json:"showId"`
	Seats       []string         `json:"seats"`
	Status      BookingStatus    `json:"status"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
	Currency    string           `json:"currency"`
	OccurredAt  time.Time        `json:"occurredAt"`
}

func NewBookingEvent(eventType BookingEventType, b *Booking, now time.Time) BookingEvent {
	return BookingEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		BookingID:   b.ID,
		UserID:      b.UserID,
		ShowID:      b.ShowID,
		Seats:       b.Seats,
		Status:      b.Status,
		TotalAmount: b.TotalAmount,
		Currency:    b.Currency,
		OccurredAt:  now,
	}
}

type EventPublisher interface {
	Publish(ctx context.Context, event BookingEvent) error
}
