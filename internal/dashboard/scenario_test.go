package dashboard_test

import (
	"context"
	"sync"
	"testing"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/catalog"
	"github.com/chrisdamba/tacticalbooking/internal/dashboard"
	"github.com/chrisdamba/tacticalbooking/internal/flow"
	"github.com/chrisdamba/tacticalbooking/internal/mocks"
	"github.com/chrisdamba/tacticalbooking/internal/selection"
	"github.com/chrisdamba/tacticalbooking/internal/service"
	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memRepo keeps bookings in memory and enforces slot capacity like the SQL store.
type memRepo struct {
	mu       sync.Mutex
	slots    map[uuid.UUID]*models.ScheduleSlot
	bookings map[string]*models.Booking
}

func newMemRepo(slots ...models.ScheduleSlot) *memRepo {
	r := &memRepo{slots: map[uuid.UUID]*models.ScheduleSlot{}, bookings: map[string]*models.Booking{}}
	for i := range slots {
		s := slots[i]
		r.slots[s.ID] = &s
	}
	return r
}

func (r *memRepo) GetUpcomingSlots(ctx context.Context, courseID string, from time.Time) ([]models.ScheduleSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.ScheduleSlot{}
	for _, s := range r.slots {
		if s.CourseID == courseID && !s.StartDate.Before(from) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memRepo) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[b.SlotID]
	if !ok || slot.CourseID != b.CourseID || !slot.HasCapacity() {
		return nil, models.ErrSlotFull
	}
	slot.CurrentParticipants++
	cp := *b
	r.bookings[b.ID.String()] = &cp
	return b, nil
}

func (r *memRepo) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, models.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Booking{}
	for _, b := range r.bookings {
		if b.UserID.String() == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memRepo) GetRegistrantsPaginated(ctx context.Context, afterCursor string, limit int) ([]models.Registrant, string, error) {
	return nil, "", nil
}

func (r *memRepo) CreateBookingDetail(ctx context.Context, detail *models.BookingDetail) error {
	return nil
}

func (r *memRepo) MarkFormsFilled(ctx context.Context, id string) error {
	return r.update(id, func(b *models.Booking) { b.FormsFilled = true })
}

func (r *memRepo) SetDocument(ctx context.Context, id, path string) error {
	return r.update(id, func(b *models.Booking) {
		b.DocumentPath = &path
		b.FilesUploaded = true
	})
}

func (r *memRepo) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	return r.update(id, func(b *models.Booking) { b.PaymentStatus = status })
}

func (r *memRepo) update(id string, fn func(*models.Booking)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return models.ErrBookingNotFound
	}
	fn(b)
	return nil
}

func TestBookingToDepositScenario(t *testing.T) {
	ctx := context.Background()
	logger, _ := logtest.NewNullLogger()
	cat, err := catalog.Default()
	require.NoError(t, err)

	userID := uuid.New().String()
	s1 := models.ScheduleSlot{
		ID:                  uuid.New(),
		CourseID:            "combat",
		StartDate:           time.Now().Add(30 * 24 * time.Hour),
		EndDate:             time.Now().Add(33 * 24 * time.Hour),
		MaxParticipants:     12,
		CurrentParticipants: 5,
	}
	repo := newMemRepo(s1)
	checkout := new(mocks.MockCheckoutClient)
	store := new(mocks.MockDocumentStore)

	bookings := service.NewBookingService(logger, repo, repo, store, cat, service.DocumentSettings{})
	payments := service.NewPaymentService(logger, repo, checkout)
	board := dashboard.NewOrchestrator(logger, payments, bookings, cat)
	flows := flow.NewRegistry(cat)

	// course and date picked, no extras
	flowID, err := flows.Start(userID, "combat")
	require.NoError(t, err)

	slots, err := bookings.AvailableSlots(ctx, "combat")
	require.NoError(t, err)
	require.Len(t, slots, 1)

	var snapshot *selection.Selection
	err = flows.Update(userID, flowID, func(sel *selection.Selection) error {
		slot, ok := selection.MatchDate(s1.StartDate, slots)
		require.True(t, ok)
		sel.SelectSlot(&slot)
		snapshot = sel.Clone()
		return nil
	})
	require.NoError(t, err)

	booking, err := bookings.CompleteBooking(ctx, userID, snapshot)
	require.NoError(t, err)
	flows.Discard(userID, flowID)

	assert.Equal(t, int64(5700), booking.TotalAmount)
	assert.Equal(t, models.PaymentPending, booking.PaymentStatus)
	assert.Equal(t, 6, repo.slots[s1.ID].CurrentParticipants)
	assert.Equal(t, 0, flows.Len())

	bookingID := booking.ID.String()
	checkout.On("CreateSession", ctx, mock.MatchedBy(func(req models.CheckoutRequest) bool {
		return req.BookingID == bookingID && req.Amount == 100000
	})).Return(&models.CheckoutSession{ID: "cs_e2e", URL: "https://checkout.example/cs_e2e"}, nil)

	url, err := payments.CreateDepositSession(ctx, userID, bookingID)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/cs_e2e", url)

	checkout.On("GetSession", ctx, "cs_e2e").
		Return(&models.CheckoutSession{ID: "cs_e2e", PaymentStatus: "paid", ClientReferenceID: bookingID}, nil)

	view, err := board.HandleReturn(ctx, userID, mustParse(t, "/dashboard?payment=success&session_id=cs_e2e"))
	require.NoError(t, err)
	require.NotNil(t, view.Notice)
	assert.Equal(t, dashboard.NoticeSuccess, view.Notice.Kind)
	assert.Equal(t, "/dashboard", view.CleanURL)

	require.Len(t, view.Bookings, 1)
	got := view.Bookings[0]
	assert.Equal(t, models.PaymentDepositPaid, got.PaymentStatus)
	assert.True(t, got.ActionRequired)
	assert.Equal(t, []dashboard.Step{dashboard.StepCompleteForm, dashboard.StepUploadDocument}, got.PendingSteps)
	checkout.AssertExpectations(t)
}
