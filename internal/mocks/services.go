package mocks

import (
	"context"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/ports"
	"github.com/chrisdamba/tacticalbooking/internal/selection"
	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) AvailableSlots(ctx context.Context, courseID string) ([]models.ScheduleSlot, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ScheduleSlot), args.Error(1)
}

func (m *MockBookingService) CompleteBooking(ctx context.Context, userID string, sel *selection.Selection) (*models.Booking, error) {
	args := m.Called(ctx, userID, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) UserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingService) SubmitBookingForm(ctx context.Context, userID, bookingID string, detail *models.BookingDetail) error {
	args := m.Called(ctx, userID, bookingID, detail)
	return args.Error(0)
}

func (m *MockBookingService) UploadDocument(ctx context.Context, userID, bookingID string, doc ports.Document) (*models.Booking, error) {
	args := m.Called(ctx, userID, bookingID, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) DocumentURL(ctx context.Context, userID, bookingID string, admin bool) (*models.DocumentURLResponse, error) {
	args := m.Called(ctx, userID, bookingID, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DocumentURLResponse), args.Error(1)
}

func (m *MockBookingService) AllRegistrants(ctx context.Context, req models.GetRegistrantsRequest) (*models.AllRegistrantsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AllRegistrantsResponse), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateDepositSession(ctx context.Context, userID, bookingID string) (string, error) {
	args := m.Called(ctx, userID, bookingID)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentService) VerifyPayment(ctx context.Context, sessionID string) (*models.PaymentVerification, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentVerification), args.Error(1)
}
