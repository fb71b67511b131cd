package validator

import (
	"regexp"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/go-playground/validator/v10"
)

const (
	minParticipantAge = 18
	maxParticipantAge = 100
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,18}[0-9]$`)

type CourseLookup interface {
	Course(id string) (models.Course, bool)
}

type CustomValidator struct {
	validator *validator.Validate
	now       func() time.Time
}

type Option func(*CustomValidator)

// WithClock sets the "today" the adult rule measures ages against.
func WithClock(now func() time.Time) Option {
	return func(cv *CustomValidator) {
		cv.now = now
	}
}

func NewCustomValidator(catalog CourseLookup, opts ...Option) *CustomValidator {
	cv := &CustomValidator{now: time.Now}
	for _, opt := range opts {
		opt(cv)
	}

	v := validator.New()
	v.RegisterValidation("adult", cv.validateAdult)
	v.RegisterValidation("phone", validatePhone)
	v.RegisterValidation("catalog_course", func(fl validator.FieldLevel) bool {
		if catalog == nil {
			return false
		}
		_, ok := catalog.Course(fl.Field().String())
		return ok
	})

	cv.validator = v
	return cv
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) validateAdult(fl validator.FieldLevel) bool {
	birthday, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	age := ageOn(birthday, cv.now().In(birthday.Location()))
	return age >= minParticipantAge && age <= maxParticipantAge
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func ageOn(birthday, now time.Time) int {
	age := now.Year() - birthday.Year()
	// birthday not reached yet this year
	if now.Month() < birthday.Month() || (now.Month() == birthday.Month() && now.Day() < birthday.Day()) {
		age--
	}
	return age
}
