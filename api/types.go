package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	CANCELLED BookingStatus = "CANCELLED"
	CONFIRMED BookingStatus = "CONFIRMED"
	CREATED   BookingStatus = "CREATED"
	EXPIRED   BookingStatus = "EXPIRED"
	FAILED    BookingStatus = "FAILED"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`

	// ConflictingSeats lists the seats already held by other bookings.
	ConflictingSeats *[]string `json:"conflictingSeats,omitempty"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

type HealthcheckResponse struct {
	Status       string            `json:"status"`
	SystemInfo   SystemInfo        `json:"systemInfo"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type CreateShowRequest struct {
	MovieId    int             `json:"movieId" validate:"required,gt=0"`
	TheatreId  int             `json:"theatreId" validate:"required,gt=0"`
	ScreenName string          `json:"screenName" validate:"required,max=50"`
	StartTime  time.Time       `json:"startTime" validate:"required"`
	EndTime    time.Time       `json:"endTime" validate:"required,gtfield=StartTime"`
	Price      decimal.Decimal `json:"price" validate:"gte=0"`
	Currency   *string         `json:"currency,omitempty" validate:"omitempty,iso4217"`
	TotalSeats int             `json:"totalSeats" validate:"required,gt=0,lte=1000"`
}

type Show struct {
	Id             int       `json:"id"`
	MovieId        int       `json:"movieId"`
	TheatreId      int       `json:"theatreId"`
	ScreenName     string    `json:"screenName"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	Price          string    `json:"price"`
	Currency       string    `json:"currency"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
	OccupiedSeats  []string  `json:"occupiedSeats"`
}

type ShowResponse struct {
	Show Show `json:"show"`
}

type CreateBookingRequest struct {
	ShowId int      `json:"showId" validate:"required,gt=0"`
	Seats  []string `json:"seats" validate:"required,min=1,unique,dive,seat_label"`
}

// CreateBookingParams defines parameters for CreateBooking.
type CreateBookingParams struct {
	IdempotencyKey *string `json:"Idempotency-Key,omitempty" validate:"omitempty,max=64"`
}

type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

type Booking struct {
	Id           int           `json:"id"`
	UserId       int           `json:"userId"`
	ShowId       int           `json:"showId"`
	MovieId      int           `json:"movieId"`
	TheatreId    int           `json:"theatreId"`
	ShowTime     time.Time     `json:"showTime"`
	Seats        []string      `json:"seats"`
	Status       BookingStatus `json:"status"`
	TotalAmount  string        `json:"totalAmount"`
	Currency     string        `json:"currency"`
	CancelledAt  *time.Time    `json:"cancelledAt,omitempty"`
	CancelReason *string       `json:"cancelReason,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type BookingResponse struct {
	Booking Booking `json:"booking"`
}

type BookingsResponse struct {
	Bookings []Booking `json:"bookings"`
	Metadata Metadata  `json:"metadata"`
}

// ListBookingsParams defines parameters for ListBookings.
type ListBookingsParams struct {
	Page     *int `form:"page,omitempty" json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize *int `form:"pageSize,omitempty" json:"pageSize,omitempty" validate:"omitempty,min=1,max=100"`
}

type CheckoutSessionResponse struct {
	RedirectUrl string `json:"redirectUrl"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
