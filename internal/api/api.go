package api

import (
	"errors"
	"net/http"
	"time"

	models "github.com/chrisdamba/tacticalbooking/internal"
	"github.com/chrisdamba/tacticalbooking/internal/dashboard"
	"github.com/chrisdamba/tacticalbooking/internal/flow"
	"github.com/chrisdamba/tacticalbooking/internal/ports"
	"github.com/chrisdamba/tacticalbooking/internal/utils"
	"github.com/chrisdamba/tacticalbooking/internal/validator"
	"github.com/chrisdamba/tacticalbooking/pkg/auth"
	"github.com/sirupsen/logrus"
)

// Handlers holds what the HTTP endpoints need. Every field but Location is required.
type Handlers struct {
	Log            logrus.FieldLogger
	Catalog        ports.Catalog
	Flows          *flow.Registry
	Bookings       ports.BookingService
	Payments       ports.PaymentService
	Dashboard      *dashboard.Orchestrator
	Validator      *validator.CustomValidator
	MaxUploadBytes int64
	// Location is the timezone calendar dates are read in; nil means UTC.
	Location *time.Location
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{models.ErrInvalidUUID, http.StatusBadRequest},
	{models.ErrIncompleteSelection, http.StatusBadRequest},
	{models.ErrSlotCourseMismatch, http.StatusBadRequest},
	{models.ErrMissingSessionID, http.StatusBadRequest},
	{models.ErrUnsupportedDocument, http.StatusBadRequest},
	{models.ErrDocumentTooLarge, http.StatusRequestEntityTooLarge},
	{models.ErrBookingForbidden, http.StatusForbidden},
	{models.ErrBookingNotFound, http.StatusNotFound},
	{models.ErrCourseNotFound, http.StatusNotFound},
	{models.ErrExtraNotFound, http.StatusNotFound},
	{models.ErrFlowNotFound, http.StatusNotFound},
	{models.ErrDocumentMissing, http.StatusNotFound},
	{models.ErrSlotFull, http.StatusConflict},
	{models.ErrUnknownBookingReference, http.StatusBadGateway},
	{models.ErrPaymentProvider, http.StatusBadGateway},
	{models.ErrStorageProvider, http.StatusBadGateway},
	{auth.ErrMissingToken, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
}

// getApiError maps err to a status and a message safe to show to the caller.
func getApiError(err error) utils.ApiError {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return utils.ApiError{StatusCode: e.status, Msg: e.err.Error()}
		}
	}
	return utils.NewInternalServerError("internal server error")
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	ae := getApiError(err)
	if ae.StatusCode >= http.StatusInternalServerError {
		h.Log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("request failed")
	}
	utils.RenderResponse(r, w, ae.StatusCode, ae)
}

func renderBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	ae := utils.NewBadRequest(msg)
	utils.RenderResponse(r, w, ae.StatusCode, ae)
}

// RenderAuthError is the failure renderer for auth.Verifier.Authenticate.
func RenderAuthError(w http.ResponseWriter, r *http.Request, err error) {
	ae := getApiError(err)
	if ae.StatusCode != http.StatusUnauthorized {
		ae = utils.NewUnauthorized(auth.ErrInvalidToken.Error())
	}
	utils.RenderResponse(r, w, ae.StatusCode, ae)
}

// RequireAdmin lets only back-office identities through.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if !ok {
			RenderAuthError(w, r, auth.ErrMissingToken)
			return
		}
		if !id.IsAdmin() {
			ae := utils.NewForbidden("admin role required")
			utils.RenderResponse(r, w, ae.StatusCode, ae)
			return
		}
		next(w, r)
	}
}

// decodeAndValidate reads a JSON body into dst and runs the struct validator.
// It renders the failure itself and reports whether the handler may continue.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.JsonDecodeBody(r, dst); err != nil {
		renderBadRequest(w, r, "error json decoding body")
		return false
	}
	if err := h.Validator.Validate(dst); err != nil {
		renderBadRequest(w, r, err.Error())
		return false
	}
	return true
}

func identity(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}
