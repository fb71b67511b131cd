package api

import (
	"net/http"

	"github.com/chrisdamba/tacticalbooking/internal/utils"
)

const versionPrefix = "/v1"

// Register mounts every endpoint on mux. authn guards the endpoints that need
// a signed-in user.
func (h *Handlers) Register(mux *http.ServeMux, authn func(http.HandlerFunc) http.HandlerFunc) {
	jsonBody := func(next http.HandlerFunc) http.HandlerFunc {
		return utils.AllowedContentTypes(next, "application/json")
	}

	// catalog
	mux.HandleFunc("GET "+versionPrefix+"/courses", h.ListCourses())
	mux.HandleFunc("GET "+versionPrefix+"/extras", h.ListExtras())
	mux.HandleFunc("GET "+versionPrefix+"/courses/{id}/slots", h.ListSlots())

	// booking flow
	mux.HandleFunc("POST "+versionPrefix+"/flows", authn(jsonBody(h.StartFlow())))
	mux.HandleFunc("GET "+versionPrefix+"/flows/{id}", authn(h.GetFlow()))
	mux.HandleFunc("PUT "+versionPrefix+"/flows/{id}/slot", authn(jsonBody(h.SelectDate())))
	mux.HandleFunc("POST "+versionPrefix+"/flows/{id}/extras/{extraID}", authn(h.IncreaseExtra()))
	mux.HandleFunc("DELETE "+versionPrefix+"/flows/{id}/extras/{extraID}", authn(h.DecreaseExtra()))
	mux.HandleFunc("DELETE "+versionPrefix+"/flows/{id}", authn(h.DiscardFlow()))
	mux.HandleFunc("POST "+versionPrefix+"/flows/{id}/complete", authn(h.CompleteFlow()))

	// bookings
	mux.HandleFunc("GET "+versionPrefix+"/bookings", authn(h.ListBookings()))
	mux.HandleFunc("POST "+versionPrefix+"/bookings/{id}/form", authn(jsonBody(h.SubmitForm())))
	mux.HandleFunc("POST "+versionPrefix+"/bookings/{id}/document", authn(h.UploadDocument()))
	mux.HandleFunc("GET "+versionPrefix+"/bookings/{id}/document", authn(h.DocumentURL(false)))

	// payments
	mux.HandleFunc("POST "+versionPrefix+"/create-deposit-session", authn(jsonBody(h.CreateDepositSession())))
	mux.HandleFunc("POST "+versionPrefix+"/verify-payment", authn(jsonBody(h.VerifyPayment())))
	mux.HandleFunc("GET "+versionPrefix+"/dashboard", authn(h.DashboardView()))

	// back office
	mux.HandleFunc("GET "+versionPrefix+"/admin/registrants", authn(RequireAdmin(h.ListRegistrants())))
	mux.HandleFunc("GET "+versionPrefix+"/admin/bookings/{id}/document", authn(RequireAdmin(h.DocumentURL(true))))
}
