package service

import (
	"context"
	"fmt"
	"strings"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/ports"
	"github.com/chrisdamba/tacticalbooking/pkg/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DepositAmount is charged in minor units regardless of the course price.
	DepositAmount   int64 = 100000
	DepositCurrency       = "eur"

	processorStatusPaid = "paid"
)

type paymentService struct {
	log      logrus.FieldLogger
	repo     ports.BookingRepository
	checkout ports.CheckoutClient
}

func NewPaymentService(log logrus.FieldLogger, repo ports.BookingRepository, checkout ports.CheckoutClient) *paymentService {
	return &paymentService{
		log:      log,
		repo:     repo,
		checkout: checkout,
	}
}

// CreateDepositSession opens a hosted checkout for the booking's deposit and
// returns the URL the user is redirected to.
func (s *paymentService) CreateDepositSession(ctx context.Context, userID, bookingID string) (string, error) {
	if _, err := uuid.Parse(bookingID); err != nil {
		return "", models.ErrInvalidUUID
	}

	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if booking.UserID.String() != userID {
		return "", models.ErrBookingForbidden
	}

	session, err := s.checkout.CreateSession(ctx, models.CheckoutRequest{
		BookingID:   booking.ID.String(),
		Amount:      DepositAmount,
		Currency:    DepositCurrency,
		Description: fmt.Sprintf("Deposit: %s course", booking.CourseID),
	})
	if err != nil {
		s.log.WithField("booking_id", bookingID).WithError(err).Error("creating deposit session failed")
		return "", fmt.Errorf("%w: %w", models.ErrPaymentProvider, err)
	}

	metrics.DepositSessions.Inc()
	return session.URL, nil
}

// VerifyPayment asks the processor for the session outcome. Only a paid
// session changes the booking; verifying the same session again re-applies it.
func (s *paymentService) VerifyPayment(ctx context.Context, sessionID string) (*models.PaymentVerification, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, models.ErrMissingSessionID
	}

	session, err := s.checkout.GetSession(ctx, sessionID)
	if err != nil {
		s.log.WithField("session_id", sessionID).WithError(err).Error("retrieving checkout session failed")
		return nil, fmt.Errorf("%w: %w", models.ErrPaymentProvider, err)
	}
	metrics.PaymentVerifications.WithLabelValues(session.PaymentStatus).Inc()

	if session.PaymentStatus != processorStatusPaid {
		return &models.PaymentVerification{Success: false, Status: session.PaymentStatus}, nil
	}

	bookingID := session.ClientReferenceID
	if _, err := uuid.Parse(bookingID); err != nil {
		s.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"reference":  bookingID,
		}).Error("paid session carries no usable booking reference")
		return nil, models.ErrUnknownBookingReference
	}

	if err := s.repo.UpdatePaymentStatus(ctx, bookingID, models.PaymentDepositPaid); err != nil {
		return nil, fmt.Errorf("error updating payment status: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"session_id": sessionID,
	}).Info("deposit paid")

	return &models.PaymentVerification{
		Success:   true,
		Status:    string(models.PaymentDepositPaid),
		BookingID: bookingID,
	}, nil
}
