package models

import "errors"

var (
	ErrInvalidUUID             = errors.New("invalid uuid")
	ErrCourseNotFound          = errors.New("course not found")
	ErrExtraNotFound           = errors.New("extra not found")
	ErrSlotFull                = errors.New("course date is fully booked")
	ErrSlotCourseMismatch      = errors.New("course date does not belong to the selected course")
	ErrIncompleteSelection     = errors.New("please select a course and a date")
	ErrFlowNotFound            = errors.New("booking flow not found")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrBookingForbidden        = errors.New("booking does not belong to the current user")
	ErrDetailExists            = errors.New("booking information already submitted")
	ErrDocumentMissing         = errors.New("booking has no uploaded document")
	ErrUnsupportedDocument     = errors.New("unsupported document type")
	ErrDocumentTooLarge        = errors.New("document exceeds the maximum upload size")
	ErrMissingSessionID        = errors.New("missing session id")
	ErrUnknownBookingReference = errors.New("could not identify booking")
	ErrPaymentProvider         = errors.New("payment provider error")
	ErrStorageProvider         = errors.New("document storage error")
)
