// Package dashboard reconciles the user's bookings after the payment provider
// sends them back, and derives the outstanding steps shown per booking.
package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// NoticeTTL is how long a reconciliation notice stays visible.
const NoticeTTL = 7 * time.Second

const (
	paramPayment   = "payment"
	paramSessionID = "session_id"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	Status    string     `json:"status,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
}

type Step string

const (
	StepCompleteForm   Step = "complete_form"
	StepUploadDocument Step = "upload_document"
	StepPayDeposit     Step = "pay_deposit"
)

type BookingView struct {
	models.Booking
	CourseTitle    string `json:"course_title,omitempty"`
	ActionRequired bool   `json:"action_required"`
	PendingSteps   []Step `json:"pending_steps"`
	StatusLabel    string `json:"status_label"`
}

type View struct {
	Notice   *Notice       `json:"notice,omitempty"`
	Bookings []BookingView `json:"bookings"`
	CleanURL string        `json:"clean_url"`
}

type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, sessionID string) (*models.PaymentVerification, error)
}

type BookingLister interface {
	UserBookings(ctx context.Context, userID string) ([]models.Booking, error)
}

type CourseLookup interface {
	Course(id string) (models.Course, bool)
}

type Orchestrator struct {
	log      logrus.FieldLogger
	payments PaymentVerifier
	bookings BookingLister
	catalog  CourseLookup
	now      func() time.Time
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func NewOrchestrator(log logrus.FieldLogger, payments PaymentVerifier, bookings BookingLister, catalog CourseLookup, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		log:      log,
		payments: payments,
		bookings: bookings,
		catalog:  catalog,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleReturn inspects the query the payment provider redirected back with,
// verifies the session when there is one and returns the refreshed bookings.
// Verification failures become an error notice, never an error return.
func (o *Orchestrator) HandleReturn(ctx context.Context, userID string, u *url.URL) (*View, error) {
	q := u.Query()

	var notice *Notice
	switch q.Get(paramPayment) {
	case "success":
		if sessionID := q.Get(paramSessionID); sessionID != "" {
			notice = o.reconcile(ctx, userID, sessionID)
		}
	case "cancel":
		notice = o.notice(NoticeInfo, "Payment cancelled", "")
	}

	bookings, err := o.Bookings(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &View{
		Notice:   notice,
		Bookings: bookings,
		CleanURL: CleanURL(u),
	}, nil
}

func (o *Orchestrator) Bookings(ctx context.Context, userID string) ([]BookingView, error) {
	bookings, err := o.bookings.UserBookings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error loading bookings: %w", err)
	}
	return lo.Map(bookings, func(b models.Booking, _ int) BookingView {
		view := NewBookingView(b)
		if course, ok := o.catalog.Course(b.CourseID); ok {
			view.CourseTitle = course.Title
		}
		return view
	}), nil
}

func (o *Orchestrator) reconcile(ctx context.Context, userID, sessionID string) *Notice {
	res, err := o.payments.VerifyPayment(ctx, sessionID)
	if err != nil {
		o.log.WithFields(logrus.Fields{
			"user_id":    userID,
			"session_id": sessionID,
		}).WithError(err).Warn("payment verification failed")
		return o.notice(NoticeError, "We could not verify your payment. Please contact us if you were charged.", "")
	}
	if res.Success {
		return o.notice(NoticeSuccess, "Deposit received, thank you!", res.Status)
	}
	return o.notice(NoticeInfo, fmt.Sprintf("Payment status: %s", res.Status), res.Status)
}

func (o *Orchestrator) notice(kind NoticeKind, msg, status string) *Notice {
	return &Notice{
		Kind:      kind,
		Message:   msg,
		Status:    status,
		ExpiresAt: o.now().Add(NoticeTTL),
	}
}

// CleanURL drops the payment return parameters so reloading the page does not
// verify the session again.
func CleanURL(u *url.URL) string {
	cp := *u
	q := cp.Query()
	q.Del(paramPayment)
	q.Del(paramSessionID)
	cp.RawQuery = q.Encode()
	return cp.String()
}

func NewBookingView(b models.Booking) BookingView {
	return BookingView{
		Booking:        b,
		ActionRequired: ActionRequired(b),
		PendingSteps:   PendingSteps(b),
		StatusLabel:    StatusLabel(b),
	}
}

func depositPaid(b models.Booking) bool {
	return b.PaymentStatus == models.PaymentDepositPaid || b.PaymentStatus == models.PaymentPaid
}

func ActionRequired(b models.Booking) bool {
	return !b.FormsFilled || !b.FilesUploaded || !depositPaid(b)
}

func PendingSteps(b models.Booking) []Step {
	steps := []Step{}
	if !b.FormsFilled {
		steps = append(steps, StepCompleteForm)
	}
	if !b.FilesUploaded {
		steps = append(steps, StepUploadDocument)
	}
	if !depositPaid(b) {
		steps = append(steps, StepPayDeposit)
	}
	return steps
}

func StatusLabel(b models.Booking) string {
	switch {
	case b.Status == models.StatusCancelled:
		return "Cancelled"
	case b.PaymentStatus == models.PaymentRefunded:
		return "Refunded"
	case ActionRequired(b):
		return "Action Required"
	case b.PaymentStatus == models.PaymentPaid:
		return "Confirmed & Paid"
	default:
		return "Confirmed (Deposit Paid)"
	}
}
