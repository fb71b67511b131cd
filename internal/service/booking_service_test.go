package service_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/mocks"
	"github.com/chrisdamba/tacticalbooking/internal/ports"
	"github.com/chrisdamba/tacticalbooking/internal/selection"
	"github.com/chrisdamba/tacticalbooking/internal/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	courses []models.Course
	extras  []models.Extra
}

func (c stubCatalog) Courses() []models.Course { return c.courses }
func (c stubCatalog) Extras() []models.Extra   { return c.extras }

func (c stubCatalog) Course(id string) (models.Course, bool) {
	for _, course := range c.courses {
		if course.ID == id {
			return course, true
		}
	}
	return models.Course{}, false
}

func (c stubCatalog) Extra(id string) (models.Extra, bool) {
	for _, extra := range c.extras {
		if extra.ID == id {
			return extra, true
		}
	}
	return models.Extra{}, false
}

var (
	testCatalog = stubCatalog{
		courses: []models.Course{
			{ID: "basic", Title: "Basic", Price: 5000},
			{ID: "combat", Title: "Combat", Price: 5700},
		},
		extras: []models.Extra{
			{ID: "video", Price: 300, Category: models.CategoryMedia},
			{ID: "helicopter", Price: 2000, Category: models.CategoryExperience},
		},
	}
	video      = models.Extra{ID: "video", Price: 300, Category: models.CategoryMedia}
	helicopter = models.Extra{ID: "helicopter", Price: 2000, Category: models.CategoryExperience}
)

type fixture struct {
	repo  *mocks.MockBookingRepository
	slots *mocks.MockSlotRepository
	store *mocks.MockDocumentStore
	hook  *logtest.Hook
	svc   ports.BookingService
}

func newFixture() *fixture {
	logger, hook := logtest.NewNullLogger()
	f := &fixture{
		repo:  new(mocks.MockBookingRepository),
		slots: new(mocks.MockSlotRepository),
		store: new(mocks.MockDocumentStore),
		hook:  hook,
	}
	f.svc = service.NewBookingService(logger, f.repo, f.slots, f.store, testCatalog, service.DocumentSettings{
		MaxBytes: 1 << 20,
		URLTTL:   5 * time.Minute,
	})
	return f
}

func slotFor(courseID string) *models.ScheduleSlot {
	return &models.ScheduleSlot{
		ID:                  uuid.New(),
		CourseID:            courseID,
		StartDate:           time.Now().Add(72 * time.Hour),
		EndDate:             time.Now().Add(96 * time.Hour),
		MaxParticipants:     12,
		CurrentParticipants: 5,
	}
}

func TestAvailableSlots(t *testing.T) {
	ctx := context.Background()

	t.Run("filters full dates", func(t *testing.T) {
		f := newFixture()
		open := *slotFor("combat")
		full := *slotFor("combat")
		full.CurrentParticipants = full.MaxParticipants
		f.slots.On("GetUpcomingSlots", ctx, "combat", mock.AnythingOfType("time.Time")).
			Return([]models.ScheduleSlot{open, full}, nil)

		slots, err := f.svc.AvailableSlots(ctx, "combat")
		require.NoError(t, err)
		assert.Equal(t, []models.ScheduleSlot{open}, slots)
		f.slots.AssertExpectations(t)
	})

	t.Run("unknown course", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.AvailableSlots(ctx, "sniper")
		assert.ErrorIs(t, err, models.ErrCourseNotFound)
		f.slots.AssertNotCalled(t, "GetUpcomingSlots", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newFixture()
		f.slots.On("GetUpcomingSlots", ctx, "basic", mock.AnythingOfType("time.Time")).
			Return(nil, errors.New("connection refused"))

		_, err := f.svc.AvailableSlots(ctx, "basic")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error fetching course dates")
	})
}

func TestCompleteBooking(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("total and one line per extra unit", func(t *testing.T) {
		f := newFixture()
		sel := selection.New(testCatalog)
		sel.SelectCourse("basic")
		slot := slotFor("basic")
		sel.SelectSlot(slot)
		sel.IncreaseQuantity(video)
		sel.IncreaseQuantity(video)
		sel.IncreaseQuantity(helicopter)

		f.repo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).
			Return(func(ctx context.Context, b *models.Booking) *models.Booking { return b }, nil)

		booking, err := f.svc.CompleteBooking(ctx, userID.String(), sel)
		require.NoError(t, err)

		assert.Equal(t, int64(5000+300*2+2000), booking.TotalAmount)
		assert.Equal(t, userID, booking.UserID)
		assert.Equal(t, "basic", booking.CourseID)
		assert.Equal(t, slot.ID, booking.SlotID)
		assert.Equal(t, models.StatusPending, booking.Status)
		assert.Equal(t, models.PaymentPending, booking.PaymentStatus)
		assert.False(t, booking.FormsFilled)
		assert.False(t, booking.FilesUploaded)
		require.Len(t, booking.Extras, 3)

		prices := map[string][]int64{}
		for _, line := range booking.Extras {
			prices[line.ExtraID] = append(prices[line.ExtraID], line.PriceAtBooking)
		}
		assert.Equal(t, []int64{300, 300}, prices["video"])
		assert.Equal(t, []int64{2000}, prices["helicopter"])
		f.repo.AssertExpectations(t)
	})

	t.Run("incomplete selection", func(t *testing.T) {
		f := newFixture()
		sel := selection.New(testCatalog)
		_, err := f.svc.CompleteBooking(ctx, userID.String(), sel)
		assert.ErrorIs(t, err, models.ErrIncompleteSelection)

		sel.SelectCourse("combat")
		_, err = f.svc.CompleteBooking(ctx, userID.String(), sel)
		assert.ErrorIs(t, err, models.ErrIncompleteSelection)
		f.repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	})

	t.Run("slot of another course", func(t *testing.T) {
		f := newFixture()
		sel := selection.New(testCatalog)
		sel.SelectCourse("combat")
		sel.SelectSlot(slotFor("basic"))

		_, err := f.svc.CompleteBooking(ctx, userID.String(), sel)
		assert.ErrorIs(t, err, models.ErrSlotCourseMismatch)
	})

	t.Run("invalid user id", func(t *testing.T) {
		f := newFixture()
		sel := selection.New(testCatalog)
		sel.SelectCourse("combat")
		sel.SelectSlot(slotFor("combat"))

		_, err := f.svc.CompleteBooking(ctx, "not-a-uuid", sel)
		assert.ErrorIs(t, err, models.ErrInvalidUUID)
	})

	t.Run("rolled back transaction is logged", func(t *testing.T) {
		f := newFixture()
		sel := selection.New(testCatalog)
		sel.SelectCourse("combat")
		sel.SelectSlot(slotFor("combat"))
		sel.IncreaseQuantity(video)

		f.repo.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).
			Return(nil, models.ErrSlotFull)

		booking, err := f.svc.CompleteBooking(ctx, userID.String(), sel)
		assert.Nil(t, booking)
		assert.ErrorIs(t, err, models.ErrSlotFull)

		entry := f.hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.ErrorLevel, entry.Level)
		assert.Equal(t, "combat", entry.Data["course_id"])
		assert.Equal(t, 1, entry.Data["extras"])
	})
}

func TestUserBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := uuid.New().String()

	f.repo.On("GetBookingsByUser", ctx, userID).Return([]models.Booking{{ID: uuid.New()}}, nil)

	bookings, err := f.svc.UserBookings(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	_, err = f.svc.UserBookings(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrInvalidUUID)
}

func TestSubmitBookingForm(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	booking := &models.Booking{ID: uuid.New(), UserID: userID}
	bookingID := booking.ID.String()

	t.Run("first submission", func(t *testing.T) {
		f := newFixture()
		detail := &models.BookingDetail{FirstName: "Ana"}
		f.repo.On("GetBookingByID", ctx, bookingID).Return(booking, nil)
		f.repo.On("CreateBookingDetail", ctx, detail).Return(nil)
		f.repo.On("MarkFormsFilled", ctx, bookingID).Return(nil)

		err := f.svc.SubmitBookingForm(ctx, userID.String(), bookingID, detail)
		require.NoError(t, err)
		assert.Equal(t, booking.ID, detail.BookingID)
		f.repo.AssertExpectations(t)
	})

	t.Run("duplicate submission still marks forms filled", func(t *testing.T) {
		f := newFixture()
		detail := &models.BookingDetail{FirstName: "Ana"}
		f.repo.On("GetBookingByID", ctx, bookingID).Return(booking, nil)
		f.repo.On("CreateBookingDetail", ctx, detail).Return(models.ErrDetailExists)
		f.repo.On("MarkFormsFilled", ctx, bookingID).Return(nil)

		err := f.svc.SubmitBookingForm(ctx, userID.String(), bookingID, detail)
		require.NoError(t, err)
		f.repo.AssertExpectations(t)

		entry := f.hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.WarnLevel, entry.Level)
	})

	t.Run("someone else's booking", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetBookingByID", ctx, bookingID).Return(booking, nil)

		err := f.svc.SubmitBookingForm(ctx, uuid.New().String(), bookingID, &models.BookingDetail{})
		assert.ErrorIs(t, err, models.ErrBookingForbidden)
		f.repo.AssertNotCalled(t, "CreateBookingDetail", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture()
		detail := &models.BookingDetail{}
		f.repo.On("GetBookingByID", ctx, bookingID).Return(booking, nil)
		f.repo.On("CreateBookingDetail", ctx, detail).Return(errors.New("timeout"))

		err := f.svc.SubmitBookingForm(ctx, userID.String(), bookingID, detail)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error saving booking information")
		f.repo.AssertNotCalled(t, "MarkFormsFilled", mock.Anything, mock.Anything)
	})
}

func TestUploadDocument(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	booking := &models.Booking{ID: uuid.New(), UserID: userID}
	bookingID := booking.ID.String()
	keyPattern := regexp.MustCompile("^" + userID.String() + "/" + bookingID + `/\d+-my_passport_.pdf$`)

	t.Run("uploads and records the key", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetBookingByID", ctx, bookingID).Return(&models.Booking{ID: booking.ID, UserID: userID}, nil)
		f.store.On("Upload", ctx, mock.MatchedBy(keyPattern.MatchString), "application/pdf", mock.Anything).Return(nil)
		f.repo.On("SetDocument", ctx, bookingID, mock.MatchedBy(keyPattern.MatchString)).Return(nil)

		updated, err := f.svc.UploadDocument(ctx, userID.String(), bookingID, ports.Document{
			Filename:    "../my passport!.pdf",
			ContentType: "application/pdf",
			Size:        4,
			Body:        strings.NewReader("%PDF"),
		})
		require.NoError(t, err)
		assert.True(t, updated.FilesUploaded)
		require.NotNil(t, updated.DocumentPath)
		assert.Regexp(t, keyPattern, *updated.DocumentPath)
		f.store.AssertExpectations(t)
		f.repo.AssertExpectations(t)
	})

	t.Run("rejected before any I/O", func(t *testing.T) {
		tests := []struct {
			name    string
			doc     ports.Document
			wantErr error
		}{
			{"too large", ports.Document{ContentType: "application/pdf", Size: 2 << 20}, models.ErrDocumentTooLarge},
			{"unsupported type", ports.Document{ContentType: "text/html", Size: 10}, models.ErrUnsupportedDocument},
			{"missing type", ports.Document{Size: 10}, models.ErrUnsupportedDocument},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture()
				_, err := f.svc.UploadDocument(ctx, userID.String(), bookingID, tt.doc)
				assert.ErrorIs(t, err, tt.wantErr)
				f.repo.AssertNotCalled(t, "GetBookingByID", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetBookingByID", ctx, bookingID).Return(&models.Booking{ID: booking.ID, UserID: userID}, nil)
		f.store.On("Upload", ctx, mock.Anything, "image/png", mock.Anything).Return(errors.New("denied"))

		_, err := f.svc.UploadDocument(ctx, userID.String(), bookingID, ports.Document{
			Filename:    "id.png",
			ContentType: "image/png",
			Size:        10,
			Body:        strings.NewReader("png"),
		})
		assert.ErrorIs(t, err, models.ErrStorageProvider)
		f.repo.AssertNotCalled(t, "SetDocument", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDocumentURL(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	path := userID.String() + "/b/1-id.pdf"
	withDoc := &models.Booking{ID: uuid.New(), UserID: userID, DocumentPath: &path}
	withoutDoc := &models.Booking{ID: uuid.New(), UserID: userID}

	t.Run("owner", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetBookingByID", ctx, withDoc.ID.String()).Return(withDoc, nil)
		f.store.On("SignedURL", ctx, path, 5*time.Minute).Return("https://signed", nil)

		res, err := f.svc.DocumentURL(ctx, userID.String(), withDoc.ID.String(), false)
		require.NoError(t, err)
		assert.Equal(t, "https://signed", res.URL)
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), res.ExpiresAt, 5*time.Second)
	})

	t.Run("admin reads any booking", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetBookingByID", ctx, withDoc.ID.String()).Return(withDoc, nil)
		f.store.On("SignedURL", ctx, path, 5*time.Minute).Return("https://signed", nil)

		_, err := f.svc.DocumentURL(ctx, uuid.New().String(), withDoc.ID.String(), true)
		require.NoError(t, err)
	})

	t.Run("other user", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetBookingByID", ctx, withDoc.ID.String()).Return(withDoc, nil)

		_, err := f.svc.DocumentURL(ctx, uuid.New().String(), withDoc.ID.String(), false)
		assert.ErrorIs(t, err, models.ErrBookingForbidden)
	})

	t.Run("no document", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetBookingByID", ctx, withoutDoc.ID.String()).Return(withoutDoc, nil)

		_, err := f.svc.DocumentURL(ctx, userID.String(), withoutDoc.ID.String(), false)
		assert.ErrorIs(t, err, models.ErrDocumentMissing)
	})

	t.Run("bad booking id", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.DocumentURL(ctx, userID.String(), "abc", false)
		assert.ErrorIs(t, err, models.ErrInvalidUUID)
	})
}

func TestAllRegistrants(t *testing.T) {
	ctx := context.Background()

	t.Run("signs documents and defaults the limit", func(t *testing.T) {
		f := newFixture()
		p1, p2 := "u/b1/1-a.pdf", "u/b2/2-b.pdf"
		regs := []models.Registrant{
			{Booking: models.Booking{ID: uuid.New(), DocumentPath: &p1}, FirstName: "Ana"},
			{Booking: models.Booking{ID: uuid.New()}, FirstName: "Ben"},
			{Booking: models.Booking{ID: uuid.New(), DocumentPath: &p2}, FirstName: "Cy"},
		}
		f.repo.On("GetRegistrantsPaginated", ctx, "", 10).Return(regs, "next", nil)
		f.store.On("SignedURL", mock.Anything, p1, 5*time.Minute).Return("https://signed/a", nil)
		f.store.On("SignedURL", mock.Anything, p2, 5*time.Minute).Return("https://signed/b", nil)

		res, err := f.svc.AllRegistrants(ctx, models.GetRegistrantsRequest{})
		require.NoError(t, err)
		assert.Equal(t, 10, res.Limit)
		assert.Equal(t, "next", res.Cursor)
		require.Len(t, res.Registrants, 3)
		assert.Equal(t, "https://signed/a", res.Registrants[0].DocumentURL)
		assert.Empty(t, res.Registrants[1].DocumentURL)
		assert.Equal(t, "https://signed/b", res.Registrants[2].DocumentURL)
		f.store.AssertExpectations(t)
	})

	t.Run("caps the limit and returns an empty list", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetRegistrantsPaginated", ctx, "c1", 100).Return(nil, "", nil)

		res, err := f.svc.AllRegistrants(ctx, models.GetRegistrantsRequest{Limit: 1000, Cursor: "c1"})
		require.NoError(t, err)
		assert.NotNil(t, res.Registrants)
		assert.Empty(t, res.Registrants)
	})

	t.Run("signing failure", func(t *testing.T) {
		f := newFixture()
		p := "u/b/1-a.pdf"
		f.repo.On("GetRegistrantsPaginated", ctx, "", 5).
			Return([]models.Registrant{{Booking: models.Booking{ID: uuid.New(), DocumentPath: &p}}}, "", nil)
		f.store.On("SignedURL", mock.Anything, p, 5*time.Minute).Return("", errors.New("expired key"))

		_, err := f.svc.AllRegistrants(ctx, models.GetRegistrantsRequest{Limit: 5})
		assert.ErrorIs(t, err, models.ErrStorageProvider)
	})
}
