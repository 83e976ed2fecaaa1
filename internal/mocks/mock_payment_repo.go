package mocks

import (
	"context"

	"github.com/metinatakli/movie-booking-service/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentRepo struct {
	mock.Mock
	domain.PaymentRepository
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepo) AttachCheckoutSession(ctx context.Context, paymentID int, checkoutSessionID string) error {
	args := m.Called(ctx, paymentID, checkoutSessionID)
	return args.Error(0)
}

func (m *MockPaymentRepo) GetByCheckoutSessionId(ctx context.Context, checkoutSessionID string) (*domain.Payment, error) {
	args := m.Called(ctx, checkoutSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
