package models

import (
	"time"

	"github.com/google/uuid"
)

type ExtraCategory string

const (
	CategoryExperience    ExtraCategory = "experience"
	CategoryTactical      ExtraCategory = "tactical"
	CategoryMedia         ExtraCategory = "media"
	CategoryAccommodation ExtraCategory = "accommodation"
	CategoryTransport     ExtraCategory = "transport"
	CategoryAmmo          ExtraCategory = "ammo"
)

func (c ExtraCategory) Valid() bool {
	switch c {
	case CategoryExperience, CategoryTactical, CategoryMedia,
		CategoryAccommodation, CategoryTransport, CategoryAmmo:
		return true
	}
	return false
}

// Course prices are whole currency units.
type Course struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Price        int64    `json:"price" yaml:"price"`
	DurationDays int      `json:"duration_days" yaml:"duration_days"`
	Rounds       int      `json:"rounds" yaml:"rounds"`
	Features     []string `json:"features" yaml:"features"`
	Hotel        string   `json:"hotel,omitempty" yaml:"hotel"`
	Transport    string   `json:"transport,omitempty" yaml:"transport"`
	Popular      bool     `json:"popular" yaml:"popular"`
}

type Extra struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Price       int64         `json:"price" yaml:"price"`
	Category    ExtraCategory `json:"category" yaml:"category"`
	Description string        `json:"description,omitempty" yaml:"description"`
}

type ScheduleSlot struct {
	ID                  uuid.UUID `json:"id"`
	CourseID            string    `json:"course_id"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	MaxParticipants     int       `json:"max_participants"`
	CurrentParticipants int       `json:"current_participants"`
}

func (s ScheduleSlot) HasCapacity() bool {
	return s.CurrentParticipants < s.MaxParticipants
}

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "pending"
	PaymentDepositPaid PaymentStatus = "deposit_paid"
	PaymentPaid        PaymentStatus = "paid"
	PaymentRefunded    PaymentStatus = "refunded"
)

type Booking struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	CourseID      string             `json:"course_id"`
	SlotID        uuid.UUID          `json:"course_date_id"`
	Status        BookingStatus      `json:"status"`
	PaymentStatus PaymentStatus      `json:"payment_status"`
	TotalAmount   int64              `json:"total_amount"`
	FormsFilled   bool               `json:"forms_filled"`
	FilesUploaded bool               `json:"files_uploaded"`
	DocumentPath  *string            `json:"document_path,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Extras        []BookingExtraLine `json:"extras,omitempty"`
}

// BookingExtraLine is one unit of an extra; an extra booked three times yields three lines.
type BookingExtraLine struct {
	ID             uuid.UUID `json:"id"`
	BookingID      uuid.UUID `json:"booking_id"`
	ExtraID        string    `json:"extra_id"`
	PriceAtBooking int64     `json:"price_at_booking"`
	CreatedAt      time.Time `json:"created_at"`
}

type BookingDetail struct {
	BookingID             uuid.UUID `json:"booking_id"`
	FirstName             string    `json:"first_name" validate:"required,min=2,max=50"`
	LastName              string    `json:"last_name" validate:"required,min=2,max=50"`
	Email                 string    `json:"email" validate:"required,email"`
	Phone                 string    `json:"phone" validate:"required,phone"`
	DateOfBirth           time.Time `json:"date_of_birth" validate:"required,adult"`
	Address               string    `json:"address" validate:"required,max=200"`
	City                  string    `json:"city" validate:"required,max=100"`
	PostalCode            string    `json:"postal_code" validate:"required,max=20"`
	Country               string    `json:"country" validate:"required,max=100"`
	EmergencyContactName  string    `json:"emergency_contact_name" validate:"required,min=2,max=100"`
	EmergencyContactPhone string    `json:"emergency_contact_phone" validate:"required,phone"`
	MedicalConditions     string    `json:"medical_conditions" validate:"max=2000"`
	Signature             string    `json:"signature" validate:"required,min=2"`
	CreatedAt             time.Time `json:"created_at"`
}

type Registrant struct {
	Booking
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	DocumentURL string `json:"document_url,omitempty"`
}

type GetRegistrantsRequest struct {
	Limit  int
	Cursor string
}

type AllRegistrantsResponse struct {
	Registrants []Registrant `json:"registrants"`
	Limit       int          `json:"limit"`
	Cursor      string       `json:"cursor"`
}

type StartFlowRequest struct {
	CourseID string `json:"course_id" validate:"required,catalog_course"`
}

type SelectDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type CreateDepositSessionRequest struct {
	BookingID string `json:"bookingId" validate:"required,uuid"`
}

type CreateDepositSessionResponse struct {
	URL string `json:"url"`
}

type VerifyPaymentRequest struct {
	SessionID string `json:"session_id"`
}

type CheckoutRequest struct {
	BookingID   string
	Amount      int64
	Currency    string
	Description string
}

type CheckoutSession struct {
	ID                string
	URL               string
	PaymentStatus     string
	ClientReferenceID string
}

type PaymentVerification struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	BookingID string `json:"bookingId,omitempty"`
}

type DocumentURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
