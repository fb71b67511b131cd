package mocks

import (
	"context"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(context.Context, *models.Booking) *models.Booking); ok {
		return fn(ctx, booking), args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetRegistrantsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Registrant, string, error) {
	args := m.Called(ctx, afterCursor, limit)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]models.Registrant), args.String(1), args.Error(2)
}

func (m *MockBookingRepository) CreateBookingDetail(ctx context.Context, detail *models.BookingDetail) error {
	args := m.Called(ctx, detail)
	return args.Error(0)
}

func (m *MockBookingRepository) MarkFormsFilled(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookingRepository) SetDocument(ctx context.Context, id, path string) error {
	args := m.Called(ctx, id, path)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
