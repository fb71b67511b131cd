package ports

import (
	"context"
	"io"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/selection"
)

type Catalog interface {
	Courses() []models.Course
	Extras() []models.Extra
	Course(id string) (models.Course, bool)
	Extra(id string) (models.Extra, bool)
}

type SlotRepository interface {
	GetUpcomingSlots(ctx context.Context, courseID string, from time.Time) ([]models.ScheduleSlot, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)
	GetRegistrantsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Registrant, string, error)
	CreateBookingDetail(ctx context.Context, detail *models.BookingDetail) error
	MarkFormsFilled(ctx context.Context, id string) error
	SetDocument(ctx context.Context, id, path string) error
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error
}

type BookingService interface {
	AvailableSlots(ctx context.Context, courseID string) ([]models.ScheduleSlot, error)
	CompleteBooking(ctx context.Context, userID string, sel *selection.Selection) (*models.Booking, error)
	UserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	SubmitBookingForm(ctx context.Context, userID, bookingID string, detail *models.BookingDetail) error
	UploadDocument(ctx context.Context, userID, bookingID string, doc Document) (*models.Booking, error)
	DocumentURL(ctx context.Context, userID, bookingID string, admin bool) (*models.DocumentURLResponse, error)
	AllRegistrants(ctx context.Context, req models.GetRegistrantsRequest) (*models.AllRegistrantsResponse, error)
}

type PaymentService interface {
	CreateDepositSession(ctx context.Context, userID, bookingID string) (string, error)
	VerifyPayment(ctx context.Context, sessionID string) (*models.PaymentVerification, error)
}

type CheckoutClient interface {
	CreateSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutSession, error)
	GetSession(ctx context.Context, id string) (*models.CheckoutSession, error)
}

type DocumentStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) error
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Document struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
