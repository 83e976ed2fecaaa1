package payment

import (
	"context"
	"fmt"

	"github.com/metinatakli/movie-booking-service/internal/domain"
)

// MockPaymentProvider is used in local runs and integration tests.
type MockPaymentProvider struct {
	CheckoutSession *domain.CheckoutSession
	Err             error
}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

func (m *MockPaymentProvider) CreateCheckoutSession(
	ctx context.Context,
	booking *domain.Booking,
	payment *domain.Payment) (*domain.CheckoutSession, error) {

	if m.Err != nil {
		return nil, m.Err
	}

	if m.CheckoutSession != nil {
		return m.CheckoutSession, nil
	}

	return &domain.CheckoutSession{
		ID:  fmt.Sprintf("cs_mock_%d", payment.ID),
		URL: fmt.Sprintf("https://checkout.example.com/%d", booking.ID),
	}, nil
}
