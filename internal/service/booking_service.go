package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/ports"
	"github.com/chrisdamba/tacticalbooking/internal/selection"
	"github.com/chrisdamba/tacticalbooking/pkg/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRegistrantsLimit = 10
	maxRegistrantsLimit     = 100
	signConcurrency         = 8
)

var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

type DocumentSettings struct {
	MaxBytes int64
	URLTTL   time.Duration
}

type bookingService struct {
	log     logrus.FieldLogger
	repo    ports.BookingRepository
	slots   ports.SlotRepository
	store   ports.DocumentStore
	catalog ports.Catalog
	docs    DocumentSettings
	now     func() time.Time
}

func NewBookingService(
	log logrus.FieldLogger,
	repo ports.BookingRepository,
	slots ports.SlotRepository,
	store ports.DocumentStore,
	catalog ports.Catalog,
	docs DocumentSettings,
) *bookingService {
	if docs.MaxBytes <= 0 {
		docs.MaxBytes = 10 << 20
	}
	if docs.URLTTL <= 0 {
		docs.URLTTL = 5 * time.Minute
	}
	return &bookingService{
		log:     log,
		repo:    repo,
		slots:   slots,
		store:   store,
		catalog: catalog,
		docs:    docs,
		now:     time.Now,
	}
}

// AvailableSlots lists upcoming dates of the course that still have room.
func (s *bookingService) AvailableSlots(ctx context.Context, courseID string) ([]models.ScheduleSlot, error) {
	if _, ok := s.catalog.Course(courseID); !ok {
		return nil, models.ErrCourseNotFound
	}

	slots, err := s.slots.GetUpcomingSlots(ctx, courseID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("error fetching course dates: %w", err)
	}
	return selection.Available(slots), nil
}

// CompleteBooking persists the selection as a pending booking. The seat
// reservation, booking row and extra lines commit or roll back together.
func (s *bookingService) CompleteBooking(ctx context.Context, userID string, sel *selection.Selection) (*models.Booking, error) {
	course, ok := sel.Course()
	slot := sel.Slot()
	if !ok || slot == nil {
		return nil, models.ErrIncompleteSelection
	}
	if slot.CourseID != course.ID {
		return nil, models.ErrSlotCourseMismatch
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, models.ErrInvalidUUID
	}

	now := s.now().UTC()
	booking := &models.Booking{
		ID:            uuid.New(),
		UserID:        uid,
		CourseID:      course.ID,
		SlotID:        slot.ID,
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		TotalAmount:   sel.CalculateTotal(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// one line per unit so each keeps its own price snapshot
	for _, item := range sel.Items() {
		for i := 0; i < item.Quantity; i++ {
			booking.Extras = append(booking.Extras, models.BookingExtraLine{
				ID:             uuid.New(),
				ExtraID:        item.Extra.ID,
				PriceAtBooking: item.Extra.Price,
			})
		}
	}

	saved, err := s.repo.CreateBooking(ctx, booking)
	if err != nil {
		reason := "store"
		if errors.Is(err, models.ErrSlotFull) {
			reason = "slot_full"
		}
		metrics.BookingsFailed.WithLabelValues(course.ID, reason).Inc()
		s.log.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"user_id":    userID,
			"course_id":  course.ID,
			"slot_id":    slot.ID,
			"extras":     len(booking.Extras),
		}).WithError(err).Error("booking transaction rolled back")
		return nil, fmt.Errorf("error creating booking: %w", err)
	}

	metrics.BookingsCreated.WithLabelValues(course.ID).Inc()
	return saved, nil
}

func (s *bookingService) UserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, models.ErrInvalidUUID
	}

	bookings, err := s.repo.GetBookingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings: %w", err)
	}
	return bookings, nil
}

// SubmitBookingForm stores the participant information. A second submission
// is tolerated: the booking is still marked as having its form filled.
func (s *bookingService) SubmitBookingForm(ctx context.Context, userID, bookingID string, detail *models.BookingDetail) error {
	booking, err := s.ownedBooking(ctx, userID, bookingID)
	if err != nil {
		return err
	}

	detail.BookingID = booking.ID
	err = s.repo.CreateBookingDetail(ctx, detail)
	switch {
	case errors.Is(err, models.ErrDetailExists):
		s.log.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"user_id":    userID,
		}).Warn("booking information already submitted")
	case err != nil:
		return fmt.Errorf("error saving booking information: %w", err)
	}

	if err := s.repo.MarkFormsFilled(ctx, bookingID); err != nil {
		return fmt.Errorf("error updating booking: %w", err)
	}
	return nil
}

func (s *bookingService) UploadDocument(ctx context.Context, userID, bookingID string, doc ports.Document) (*models.Booking, error) {
	if doc.Size > s.docs.MaxBytes {
		return nil, models.ErrDocumentTooLarge
	}
	contentType, _, err := mime.ParseMediaType(doc.ContentType)
	if err != nil || !allowedDocumentTypes[contentType] {
		return nil, models.ErrUnsupportedDocument
	}

	booking, err := s.ownedBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s/%d-%s", booking.UserID, booking.ID, s.now().Unix(), sanitizeFilename(doc.Filename))
	if err := s.store.Upload(ctx, key, contentType, io.LimitReader(doc.Body, s.docs.MaxBytes)); err != nil {
		s.log.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"key":        key,
		}).WithError(err).Error("document upload failed")
		return nil, fmt.Errorf("%w: %w", models.ErrStorageProvider, err)
	}

	if err := s.repo.SetDocument(ctx, bookingID, key); err != nil {
		return nil, fmt.Errorf("error updating booking: %w", err)
	}
	metrics.DocumentUploads.Inc()

	booking.DocumentPath = &key
	booking.FilesUploaded = true
	return booking, nil
}

// DocumentURL signs a short-lived link to the booking's document. Admins may
// read any booking's document.
func (s *bookingService) DocumentURL(ctx context.Context, userID, bookingID string, admin bool) (*models.DocumentURLResponse, error) {
	var (
		booking *models.Booking
		err     error
	)
	if admin {
		booking, err = s.loadBooking(ctx, bookingID)
	} else {
		booking, err = s.ownedBooking(ctx, userID, bookingID)
	}
	if err != nil {
		return nil, err
	}

	if booking.DocumentPath == nil || *booking.DocumentPath == "" {
		return nil, models.ErrDocumentMissing
	}

	url, err := s.store.SignedURL(ctx, *booking.DocumentPath, s.docs.URLTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageProvider, err)
	}
	return &models.DocumentURLResponse{
		URL:       url,
		ExpiresAt: s.now().Add(s.docs.URLTTL).UTC(),
	}, nil
}

func (s *bookingService) AllRegistrants(ctx context.Context, req models.GetRegistrantsRequest) (*models.AllRegistrantsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultRegistrantsLimit
	}
	if limit > maxRegistrantsLimit {
		limit = maxRegistrantsLimit
	}

	registrants, nextCursor, err := s.repo.GetRegistrantsPaginated(ctx, req.Cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("error fetching registrants: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(signConcurrency)
	for i := range registrants {
		reg := &registrants[i]
		if reg.DocumentPath == nil || *reg.DocumentPath == "" {
			continue
		}
		g.Go(func() error {
			url, err := s.store.SignedURL(gctx, *reg.DocumentPath, s.docs.URLTTL)
			if err != nil {
				return fmt.Errorf("signing document of booking %s: %w", reg.ID, err)
			}
			reg.DocumentURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrStorageProvider, err)
	}

	if registrants == nil {
		registrants = []models.Registrant{}
	}
	return &models.AllRegistrantsResponse{
		Registrants: registrants,
		Limit:       limit,
		Cursor:      nextCursor,
	}, nil
}

func (s *bookingService) loadBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	if _, err := uuid.Parse(bookingID); err != nil {
		return nil, models.ErrInvalidUUID
	}
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ownedBooking(ctx context.Context, userID, bookingID string) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID.String() != userID {
		return nil, models.ErrBookingForbidden
	}
	return booking, nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "document"
	}
	return out
}
