package mocks

import (
	"context"

	"github.com/metinatakli/movie-booking-service/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentProvider
}

func (m *MockPaymentProvider) CreateCheckoutSession(
	ctx context.Context,
	booking *domain.Booking,
	payment *domain.Payment) (*domain.CheckoutSession, error) {

	args := m.Called(ctx, booking, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}

type MockWebhookParser struct {
	mock.Mock
}

func (m *MockWebhookParser) Parse(payload []byte, signature string) (*domain.PaymentResult, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
