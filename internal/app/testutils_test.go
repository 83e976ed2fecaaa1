package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/metinatakli/movie-booking-service/api"
	"github.com/metinatakli/movie-booking-service/internal/domain"
	"github.com/metinatakli/movie-booking-service/internal/mocks"
	"github.com/metinatakli/movie-booking-service/internal/validator"
	"github.com/shopspring/decimal"
)

const testJWTSecret = "test-jwt-secret"

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config: Config{
			Env: "test",
			JWT: JWTConfig{Secret: testJWTSecret},
		},
		validator:       validator.NewValidator(),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		bookingService:  &mocks.MockBookingService{},
		showRepo:        &mocks.MockShowRepo{},
		paymentRepo:     &mocks.MockPaymentRepo{},
		paymentProvider: &mocks.MockPaymentProvider{},
		webhookParser:   &mocks.MockWebhookParser{},
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func signToken(t *testing.T, secret string, claims accessClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}

	return token
}

func accessToken(t *testing.T, userID int, role domain.Role) string {
	return signToken(t, testJWTSecret, accessClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()

	return w, r
}

func authenticate(t *testing.T, r *http.Request, userID int, role domain.Role) {
	r.Header.Set("Authorization", "Bearer "+accessToken(t, userID, role))
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	var resp api.ValidationErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if tt.wantErrMessage == "" {
		return
	}

	if len(resp.ValidationErrors) > 0 || tt.wantStatus == http.StatusUnprocessableEntity {
		errorSet := make(map[string]bool)
		for _, vErr := range resp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}
		return
	}

	if resp.Message != tt.wantErrMessage {
		t.Errorf("Error message = %v, want %v", resp.Message, tt.wantErrMessage)
	}
}

func testBooking() *domain.Booking {
	created := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	return &domain.Booking{
		ID:          42,
		RequestID:   "key-1",
		UserID:      7,
		ShowID:      1,
		MovieID:     3,
		TheatreID:   5,
		ShowTime:    time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC),
		Seats:       []string{"A1", "A2"},
		Status:      domain.BookingStatusCreated,
		TotalAmount: decimal.RequireFromString("25"),
		Currency:    "USD",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func ptr[T any](v T) *T {
	return &v
}
